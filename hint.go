package cask

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// hintFile is the compact, replayable sidecar for one datafile. Its
// on-disk layout (big-endian):
//
//	offset  size  field
//	  0      8    timestamp (u64)
//	  8      8    key_size  (u64)   -- width differs from the datafile (u32)
//	 16      4    value_size (u32)
//	 20      8    value_offset (u64)
//	 28      K    key bytes
//
// file_id is never stored; it is always the hint file's own id.
const (
	hintKeySizeLen     = 8
	hintValueSizeLen   = 4
	hintValueOffsetLen = 8
	hintHeaderLen      = timestampLen + hintKeySizeLen + hintValueSizeLen + hintValueOffsetLen
)

type hintFile struct {
	fileID   uint64
	f        *os.File
	readOnly bool

	mu     sync.Mutex
	cursor int64 // append position (write mode) / scan position (read mode)
}

// createHintFile opens <dir>/<fileID>.ht for append. Position starts at 0.
func createHintFile(dir string, fileID uint64) (*hintFile, error) {
	path := hintFilePath(dir, fileID)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: create hint file %s: %v", ErrIO, path, err)
	}

	return &hintFile{fileID: fileID, f: f, readOnly: false}, nil
}

// openHintFileReadOnly opens an existing hint file for sequential read,
// scan cursor at 0.
func openHintFileReadOnly(path string, fileID uint64) (*hintFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open hint file %s: %v", ErrIO, path, err)
	}

	return &hintFile{fileID: fileID, f: f, readOnly: true}, nil
}

// append writes one hint record to the end of the file.
func (h *hintFile) append(entry KeydirEntry, key []byte) error {
	if h.readOnly {
		return ErrReadOnly
	}

	buf := make([]byte, hintHeaderLen+len(key))
	byteOrder.PutUint64(buf[0:8], entry.Timestamp)
	byteOrder.PutUint64(buf[8:16], uint64(len(key)))
	byteOrder.PutUint32(buf[16:20], entry.ValueSize)
	byteOrder.PutUint64(buf[20:28], entry.Offset)
	copy(buf[hintHeaderLen:], key)

	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.f.WriteAt(buf, h.cursor)
	if err != nil {
		return fmt.Errorf("%w: append to hint file %d: %v", ErrIO, h.fileID, err)
	}
	if n < len(buf) {
		return fmt.Errorf("%w: short write to hint file %d", ErrIO, h.fileID)
	}
	h.cursor += int64(len(buf))
	return nil
}

// next reads the next hint record from the scan cursor. Its file_id is
// filled from this hint's own id. Fails with ErrEndOfFile when no complete
// record remains.
func (h *hintFile) next() (KeydirEntry, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	header := make([]byte, hintHeaderLen)
	n, err := h.f.ReadAt(header, h.cursor)
	if n < hintHeaderLen {
		if err == io.EOF {
			return KeydirEntry{}, nil, ErrEndOfFile
		}
		if err != nil {
			return KeydirEntry{}, nil, fmt.Errorf("%w: hint header: %v", ErrIO, err)
		}
		return KeydirEntry{}, nil, ErrEndOfFile
	}

	timestamp := byteOrder.Uint64(header[0:8])
	keySize := byteOrder.Uint64(header[8:16])
	valueSize := byteOrder.Uint32(header[16:20])
	valueOffset := byteOrder.Uint64(header[20:28])

	key := make([]byte, keySize)
	n, err = h.f.ReadAt(key, h.cursor+hintHeaderLen)
	if uint64(n) < keySize {
		if err == io.EOF || err == nil {
			return KeydirEntry{}, nil, ErrEndOfFile
		}
		return KeydirEntry{}, nil, fmt.Errorf("%w: hint key: %v", ErrIO, err)
	}

	h.cursor += int64(hintHeaderLen) + int64(keySize)

	return KeydirEntry{
		FileID:    h.fileID,
		Offset:    valueOffset,
		ValueSize: valueSize,
		Timestamp: timestamp,
	}, key, nil
}

// sync performs an fsync on the underlying file.
func (h *hintFile) sync() error {
	if h.readOnly {
		return ErrReadOnly
	}
	if err := h.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync hint file %d: %v", ErrIO, h.fileID, err)
	}
	return nil
}

// close releases the file descriptor.
func (h *hintFile) close() error {
	if err := h.f.Close(); err != nil {
		return fmt.Errorf("%w: close hint file %d: %v", ErrIO, h.fileID, err)
	}
	return nil
}
