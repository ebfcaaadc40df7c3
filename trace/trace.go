package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/blockberries/stepberry/engine"
)

const (
	traceFilePerm  = 0600
	traceDirPerm   = 0700
	defaultBufSize = 64 * 1024
)

// Errors
var (
	ErrTraceClosed    = errors.New("trace is closed")
	ErrTraceCorrupted = errors.New("trace is corrupted")
)

// Writer appends snapshots to a trace. It is safe for concurrent use; frames
// from concurrent writers never interleave.
type Writer struct {
	mu     sync.Mutex
	closer io.Closer
	file   *os.File
	buf    *bufio.Writer
	enc    *encoder

	frames int
	size   int64
	closed bool
}

// NewWriter creates a writer on top of w. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriterSize(w, defaultBufSize)
	return &Writer{
		buf: buf,
		enc: newEncoder(buf),
	}
}

// Create creates (or truncates) a trace file, creating parent directories.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, traceDirPerm); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, traceFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	w := NewWriter(file)
	w.file = file
	w.closer = file
	return w, nil
}

// Write appends one snapshot frame (buffered).
func (w *Writer) Write(snap *engine.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceClosed
	}
	if snap == nil {
		return errors.New("nil snapshot")
	}
	n, err := w.enc.Encode(snap)
	if err != nil {
		return err
	}
	w.frames++
	w.size += int64(n)
	return nil
}

// Flush writes buffered frames through and syncs file-backed traces.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceClosed
	}
	return w.flush()
}

func (w *Writer) flush() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Sync()
	}
	return nil
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Size returns the number of bytes written, including buffered ones.
func (w *Writer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Close flushes the trace and closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.flush(); err != nil {
		if w.closer != nil {
			w.closer.Close()
		}
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Reader reads snapshots back from a trace.
type Reader struct {
	closer io.Closer
	dec    *decoder
}

// NewReader creates a reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: newDecoder(bufio.NewReader(r))}
}

// Open opens a trace file for reading.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	r := NewReader(file)
	r.closer = file
	return r, nil
}

// Read returns the next snapshot, or io.EOF after the last frame.
func (r *Reader) Read() (*engine.Snapshot, error) {
	return r.dec.Decode()
}

// ReadAll reads every remaining snapshot.
func (r *Reader) ReadAll() ([]*engine.Snapshot, error) {
	var out []*engine.Snapshot
	for {
		snap, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, snap)
	}
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
