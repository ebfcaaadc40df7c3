package trace

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/blockberries/stepberry/engine"
)

const (
	maxFrameSize       = 10 * 1024 * 1024 // 10MB max frame size
	defaultPoolBufSize = 4096
)

// Byte pool for decoder reads. json.Unmarshal copies out of the buffer, so it
// can be returned once a frame is decoded.
var decoderPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, defaultPoolBufSize)
		return &buf
	},
}

// encoder frames snapshots as [4 bytes length][N bytes JSON][4 bytes CRC32]
type encoder struct {
	w   io.Writer
	buf []byte
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{
		w:   w,
		buf: make([]byte, 4),
	}
}

// Encode writes one frame and returns the number of bytes written.
func (e *encoder) Encode(snap *engine.Snapshot) (int, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if len(data) > maxFrameSize {
		return 0, fmt.Errorf("snapshot of %d bytes exceeds frame limit", len(data))
	}

	binary.BigEndian.PutUint32(e.buf, uint32(len(data)))
	if _, err := e.w.Write(e.buf); err != nil {
		return 0, err
	}
	if _, err := e.w.Write(data); err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint32(e.buf, crc32.ChecksumIEEE(data))
	if _, err := e.w.Write(e.buf); err != nil {
		return 0, err
	}
	return 4 + len(data) + 4, nil
}

type decoder struct {
	r   io.Reader
	buf []byte
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{
		r:   r,
		buf: make([]byte, 4),
	}
}

// Decode reads one frame. It returns io.EOF only at a clean frame boundary;
// a frame cut short is reported as ErrTraceCorrupted.
func (d *decoder) Decode() (*engine.Snapshot, error) {
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		return nil, truncated(err)
	}
	length := binary.BigEndian.Uint32(d.buf)
	if length > maxFrameSize {
		return nil, fmt.Errorf("%w: frame length %d", ErrTraceCorrupted, length)
	}

	poolBufPtr := decoderPool.Get().(*[]byte)
	defer func() {
		*poolBufPtr = (*poolBufPtr)[:0]
		decoderPool.Put(poolBufPtr)
	}()
	poolBuf := *poolBufPtr
	if cap(poolBuf) < int(length) {
		poolBuf = make([]byte, length)
		*poolBufPtr = poolBuf
	} else {
		poolBuf = poolBuf[:length]
	}

	if _, err := io.ReadFull(d.r, poolBuf); err != nil {
		return nil, partial(err)
	}
	if _, err := io.ReadFull(d.r, d.buf); err != nil {
		return nil, partial(err)
	}
	expectedCRC := binary.BigEndian.Uint32(d.buf)
	actualCRC := crc32.ChecksumIEEE(poolBuf)
	if expectedCRC != actualCRC {
		return nil, fmt.Errorf("%w: CRC mismatch (expected %08x, got %08x)", ErrTraceCorrupted, expectedCRC, actualCRC)
	}

	snap := &engine.Snapshot{}
	if err := json.Unmarshal(poolBuf, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraceCorrupted, err)
	}
	return snap, nil
}

// truncated maps a short read of the length prefix. Zero bytes is a clean end.
func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return partial(err)
}

func partial(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated frame", ErrTraceCorrupted)
	}
	return err
}
