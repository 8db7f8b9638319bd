package cask

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DB is the database façade. It owns the active writer, the read-only file
// set, and the keydir, and is the only component permitted to mutate the
// keydir or issue writes.
type DB struct {
	cfg *Config
	log *zap.SugaredLogger

	mu         sync.RWMutex
	keydir     *keydir
	active     *datafile
	activeHint *hintFile
	readers    map[uint64]*datafile

	eg        *errgroup.Group
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Open opens (or creates) a database rooted at cfg.DataDir. It recovers the
// keydir from any existing hint files (falling back to a full datafile
// scan when a datafile has no hint file; a hint whose replay stops early
// is not followed by a scan), then creates a fresh active
// datafile for this session — the previously-active file from a prior
// session, if any, becomes just another read-only member of the reader
// set; there is no in-process Writable -> Sealed transition.
func Open(cfg *Config) (*DB, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory %s: %v", ErrIO, cfg.DataDir, err)
	}

	db := &DB{
		cfg:     cfg,
		log:     cfg.Logger,
		keydir:  newKeydir(),
		readers: make(map[uint64]*datafile),
	}

	entries, err := listDirEntries(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	datafilesByID := make(map[uint64]string)
	hintsByID := make(map[uint64]string)
	var maxID uint64
	for _, e := range entries {
		switch e.ext {
		case datafileExt:
			datafilesByID[e.id] = e.path
		case hintFileExt:
			hintsByID[e.id] = e.path
		}
		if e.id > maxID {
			maxID = e.id
		}
	}

	for id, dfPath := range datafilesByID {
		if hintPath, ok := hintsByID[id]; ok {
			if err := db.replayHintFile(hintPath, id); err != nil {
				return nil, err
			}
		} else {
			if err := db.replayDatafileScan(dfPath, id); err != nil {
				return nil, err
			}
		}

		df, err := openDatafileReadOnly(dfPath, id)
		if err != nil {
			return nil, err
		}
		db.readers[id] = df
	}

	if err := db.openFreshActiveFile(maxID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	db.cancel = cancel
	eg, egCtx := errgroup.WithContext(ctx)
	db.eg = eg

	if !cfg.SyncOnPut && cfg.SyncInterval > 0 {
		eg.Go(func() error { return db.syncLoop(egCtx) })
	}
	if cfg.MaxFileSize > 0 {
		eg.Go(func() error { return db.rotationLoop(egCtx) })
	}

	db.log.Infow("database opened", "dir", cfg.DataDir, "datafiles", len(db.readers), "keys", db.keydir.len())
	return db, nil
}

// openFreshActiveFile creates this session's active datafile, choosing a
// file id strictly greater than every id already on disk (per §9's
// sub-second-restart guidance: derive a strictly greater id rather than
// spin-waiting on the clock).
func (db *DB) openFreshActiveFile(maxExistingID uint64) error {
	id := uint64(time.Now().Unix())
	if id <= maxExistingID {
		id = maxExistingID + 1
	}

	df, err := createActiveDatafile(db.cfg.DataDir, id)
	if err != nil {
		return err
	}
	hf, err := createHintFile(db.cfg.DataDir, id)
	if err != nil {
		df.close()
		return err
	}

	db.active = df
	db.activeHint = hf
	return nil
}

// Put appends key/value to the active datafile, writes the matching hint
// record, and updates the keydir. The keydir is left unchanged if the
// datafile append fails.
func (db *DB) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry, err := db.active.append(key, value)
	if err != nil {
		return err
	}
	if err := db.activeHint.append(entry, key); err != nil {
		return err
	}

	if db.cfg.SyncOnPut {
		if err := db.active.sync(); err != nil {
			return err
		}
		if err := db.activeHint.sync(); err != nil {
			return err
		}
	}

	db.keydir.insert(key, entry)
	return nil
}

// Get looks up key in the keydir and returns its current value.
func (db *DB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	entry, err := db.keydir.lookup(key)
	if err != nil {
		db.mu.RUnlock()
		return nil, err
	}

	var df *datafile
	if entry.FileID == db.active.id() {
		df = db.active
	} else {
		df = db.readers[entry.FileID]
	}
	db.mu.RUnlock()

	if df == nil {
		return nil, ErrMissingFile
	}

	r, err := df.readAt(entry.Offset)
	if err != nil {
		return nil, err
	}
	return r.Value, nil
}

// Close flushes and releases every open file, and stops any background
// goroutines.
func (db *DB) Close() error {
	var closeErr error
	db.closeOnce.Do(func() {
		if db.cancel != nil {
			db.cancel()
		}
		if db.eg != nil {
			if err := db.eg.Wait(); err != nil {
				db.log.Warnw("background worker stopped with error", "error", err)
			}
		}

		db.mu.Lock()
		defer db.mu.Unlock()

		if err := db.active.sync(); err != nil {
			closeErr = err
			return
		}
		if err := db.active.close(); err != nil {
			closeErr = err
			return
		}
		if err := db.activeHint.sync(); err != nil {
			closeErr = err
			return
		}
		if err := db.activeHint.close(); err != nil {
			closeErr = err
			return
		}

		for id, df := range db.readers {
			if err := df.close(); err != nil {
				db.log.Warnw("failed to close reader", "file_id", id, "error", err)
				closeErr = err
			}
		}
	})
	return closeErr
}

// syncLoop performs a periodic background fsync of the active datafile,
// used when SyncOnPut is false but SyncInterval is set.
func (db *DB) syncLoop(ctx context.Context) error {
	ticker := time.NewTicker(db.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			db.mu.RLock()
			err := db.active.sync()
			db.mu.RUnlock()
			if err != nil {
				db.log.Warnw("background sync failed", "error", err)
			}
		}
	}
}
