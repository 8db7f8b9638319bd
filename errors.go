package cask

import "errors"

// Sentinel errors model the closed error-kind taxonomy this store exposes.
// Callers compare with errors.Is; call sites add path/file-id context with
// fmt.Errorf's %w.
var (
	// ErrNotFound is returned when a key is absent from the keydir.
	ErrNotFound = errors.New("cask: key not found")

	// ErrIO wraps a failed OS file operation (create, seek, read, write, sync).
	ErrIO = errors.New("cask: io error")

	// ErrCorruptFile marks an unparseable datafile/hint filename. A
	// truncated record, on a positioned read or a sequential decode, is
	// reported as ErrShortRead instead.
	ErrCorruptFile = errors.New("cask: corrupt file")

	// ErrReadOnly is returned when append is attempted on a non-active
	// datafile or hint file.
	ErrReadOnly = errors.New("cask: datafile is read-only")

	// ErrMissingFile is returned when the keydir references a file id that
	// has no open reader.
	ErrMissingFile = errors.New("cask: reader for file id not open")

	// ErrEndOfFile is returned by hintFile.next once the scan cursor
	// reaches the end of the hint file.
	ErrEndOfFile = errors.New("cask: end of hint file")

	// ErrShortRead is returned by decodeRecord when the source ends before
	// a complete record (header + key + value) has been consumed.
	ErrShortRead = errors.New("cask: short read")
)
