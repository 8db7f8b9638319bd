package cask

import (
	"context"
	"time"
)

// rotationLoop periodically checks whether the active datafile has
// reached cfg.MaxFileSize and, if so, seals it into the reader set and
// opens a fresh active datafile. This is file rotation, not compaction: no
// record is rewritten or discarded, so it does not reintroduce the
// merge/compaction non-goal.
func (db *DB) rotationLoop(ctx context.Context) error {
	ticker := time.NewTicker(db.cfg.RotationCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := db.rotateIfNeeded(); err != nil {
				db.log.Warnw("rotation failed", "error", err)
			}
		}
	}
}

// rotateIfNeeded seals the active datafile into readers and opens a fresh
// one when the active datafile's size has crossed cfg.MaxFileSize.
func (db *DB) rotateIfNeeded() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.active.size < db.cfg.MaxFileSize {
		return nil
	}

	sealedID := db.active.id()
	sealedPath := datafilePath(db.cfg.DataDir, sealedID)

	if err := db.active.sync(); err != nil {
		return err
	}
	if err := db.active.close(); err != nil {
		return err
	}
	if err := db.activeHint.sync(); err != nil {
		return err
	}
	if err := db.activeHint.close(); err != nil {
		return err
	}

	sealedReader, err := openDatafileReadOnly(sealedPath, sealedID)
	if err != nil {
		return err
	}

	if err := db.openFreshActiveFile(sealedID); err != nil {
		sealedReader.close()
		return err
	}

	db.readers[sealedID] = sealedReader
	db.log.Infow("rotated active datafile", "sealed_file_id", sealedID, "new_file_id", db.active.id())
	return nil
}
