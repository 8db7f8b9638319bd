package cask

import (
	"fmt"
	"os"
	"sync"
)

// datafile is one append-only on-disk log, addressable by file id. It
// operates in one of two modes: a single writable (active) file, or a
// read-only file opened from a previous session.
type datafile struct {
	fileID   uint64
	f        *os.File
	readOnly bool

	// size tracks the current end-of-file offset so append doesn't need a
	// seek-to-end round trip on every call. Only the active (writable)
	// datafile mutates it.
	mu   sync.Mutex
	size int64
}

// createActiveDatafile creates a fresh writable datafile at
// <dir>/<fileID>.df. It fails with ErrIO if the id collides with an
// existing file or the create fails.
func createActiveDatafile(dir string, fileID uint64) (*datafile, error) {
	path := datafilePath(dir, fileID)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create active datafile %s: %v", ErrIO, path, err)
	}

	return &datafile{fileID: fileID, f: f, readOnly: false}, nil
}

// openDatafileReadOnly opens an existing datafile for reading only.
func openDatafileReadOnly(path string, fileID uint64) (*datafile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open datafile %s: %v", ErrIO, path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat datafile %s: %v", ErrIO, path, err)
	}

	return &datafile{fileID: fileID, f: f, readOnly: true, size: fi.Size()}, nil
}

// append is only valid on the active datafile. It constructs a record with
// the current timestamp, appends its encoded bytes, and returns a keydir
// entry describing where it landed. The returned offset is the offset of
// the record's first byte (the timestamp).
func (d *datafile) append(key, value []byte) (KeydirEntry, error) {
	if d.readOnly {
		return KeydirEntry{}, ErrReadOnly
	}

	r := newRecord(key, value)
	offset, err := d.appendRaw(r)
	if err != nil {
		return KeydirEntry{}, err
	}

	return KeydirEntry{
		FileID:    d.fileID,
		Offset:    offset,
		ValueSize: uint32(len(value)),
		Timestamp: r.Timestamp,
	}, nil
}

// appendRaw accepts a pre-built record (append builds one and calls this)
// and returns the offset of its first byte.
func (d *datafile) appendRaw(r Record) (offset uint64, err error) {
	if d.readOnly {
		return 0, ErrReadOnly
	}

	encoded := r.encode()

	d.mu.Lock()
	defer d.mu.Unlock()

	n, err := d.f.WriteAt(encoded, d.size)
	if err != nil {
		return 0, fmt.Errorf("%w: append to datafile %d: %v", ErrIO, d.fileID, err)
	}
	if n < len(encoded) {
		return 0, fmt.Errorf("%w: short write to datafile %d", ErrIO, d.fileID)
	}

	offset = uint64(d.size)
	d.size += int64(len(encoded))
	return offset, nil
}

// readAt seeks to offset and decodes exactly one record. Valid in any mode;
// concurrent readers never disturb the active writer's append position
// because WriteAt/ReadAt are both positioned operations.
func (d *datafile) readAt(offset uint64) (Record, error) {
	r, err := decodeRecord(&offsetReader{f: d.f, offset: int64(offset)})
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

// offsetReader adapts os.File.ReadAt into a sequential io.Reader anchored at
// a fixed starting offset, so decodeRecord can consume the header and then
// the body without needing to know the file's total size up front.
type offsetReader struct {
	f      *os.File
	offset int64
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.f.ReadAt(p, o.offset)
	o.offset += int64(n)
	return n, err
}

// id returns the file id this datafile was created or opened with.
func (d *datafile) id() uint64 {
	return d.fileID
}

// sync performs an fsync on the underlying file.
func (d *datafile) sync() error {
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync datafile %d: %v", ErrIO, d.fileID, err)
	}
	return nil
}

// close releases the file descriptor. Pending writes are already durable to
// the OS page cache via WriteAt; no buffered writer sits in front of the
// handle.
func (d *datafile) close() error {
	if err := d.f.Close(); err != nil {
		return fmt.Errorf("%w: close datafile %d: %v", ErrIO, d.fileID, err)
	}
	return nil
}
