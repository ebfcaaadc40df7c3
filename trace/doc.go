// Package trace stores simulation snapshots for an external renderer.
//
// A trace is a flat sequence of frames, one per snapshot:
//
//	[4 bytes: length][N bytes: JSON-encoded snapshot][4 bytes: CRC32]
//
// The length prefix lets a reader skip through the file; the CRC32 detects a
// frame cut short by an interrupted export or damaged on disk. Readers return
// ErrTraceCorrupted for either.
//
// Log parameters are decoded as generic JSON values, so numbers read back as
// float64 and nested reason keys as strings.
package trace
