package cask

import (
	"errors"
	"fmt"
	"os"
)

// replayHintFile replays a datafile's hint sidecar into the keydir using
// insert-if-newer semantics (I3): a hint record only overwrites an existing
// keydir entry if its timestamp is strictly greater, or on equal timestamps
// if its (file id, offset) is greater. Per §7, a hint-scan error (including a
// truncated trailing record) terminates this file's replay without
// aborting startup — the hint simply ends up covering fewer keys, and
// fresh writes re-establish coverage over time.
func (db *DB) replayHintFile(path string, fileID uint64) error {
	h, err := openHintFileReadOnly(path, fileID)
	if err != nil {
		return err
	}
	defer h.close()

	for {
		entry, key, err := h.next()
		if errors.Is(err, ErrEndOfFile) {
			return nil
		}
		if err != nil {
			db.log.Warnw("hint replay stopped early", "file_id", fileID, "error", err)
			return nil
		}
		db.keydir.insertIfNewer(key, entry)
	}
}

// replayDatafileScan is the fallback recovery path for a datafile whose
// hint sidecar is absent: it sequentially scans the
// datafile itself, reconstructing a keydir entry from each record's header,
// per §9 ("Fallback recovery without hint files").
func (db *DB) replayDatafileScan(path string, fileID uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open datafile for scan %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat datafile %s: %v", ErrIO, path, err)
	}

	var offset int64
	size := fi.Size()
	for offset < size {
		r, err := decodeRecord(&offsetReader{f: f, offset: offset})
		if err != nil {
			db.log.Warnw("datafile scan stopped early", "file_id", fileID, "offset", offset, "error", err)
			return nil
		}

		recordLen := int64(recordHeaderLen + len(r.Key) + len(r.Value))
		db.keydir.insertIfNewer(r.Key, KeydirEntry{
			FileID:    fileID,
			Offset:    uint64(offset),
			ValueSize: uint32(len(r.Value)),
			Timestamp: r.Timestamp,
		})
		offset += recordLen
	}
	return nil
}
