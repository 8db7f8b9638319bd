package cask

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	datafileExt = ".df"
	hintFileExt = ".ht"
)

// datafilePath composes <dir>/<fileID>.df.
func datafilePath(dir string, fileID uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s", fileID, datafileExt))
}

// hintFilePath composes <dir>/<fileID>.ht.
func hintFilePath(dir string, fileID uint64) string {
	return filepath.Join(dir, fmt.Sprintf("%d%s", fileID, hintFileExt))
}

// parseFileID extracts the file id and extension from a path of the form
// <dir-prefix>/<file_id>.<ext>. It tolerates arbitrary directory prefixes by
// splitting on the last path separator, then on the last '.'. Any other
// shape fails with ErrCorruptFile.
func parseFileID(path string) (id uint64, ext string, err error) {
	base := filepath.Base(path)
	dot := strings.LastIndex(base, ".")
	if dot <= 0 {
		return 0, "", fmt.Errorf("%w: unparseable filename %q", ErrCorruptFile, base)
	}

	idPart, extPart := base[:dot], base[dot:]
	parsed, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return 0, extPart, fmt.Errorf("%w: unparseable file id %q: %v", ErrCorruptFile, idPart, err)
	}
	return parsed, extPart, nil
}

// dirEntry is one <file_id>.<ext> member of a database directory.
type dirEntry struct {
	path string
	id   uint64
	ext  string
}

// listDirEntries enumerates the immediate entries of dir, parsing each
// filename into a dirEntry, sorted oldest-id to newest-id. Non-datafile,
// non-hint-file entries are skipped. A present-but-unparseable entry is
// fatal (ErrCorruptFile), per spec.
func listDirEntries(dir string) ([]dirEntry, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read directory %s: %v", ErrIO, dir, err)
	}

	entries := make([]dirEntry, 0, len(names))
	for _, name := range names {
		if name.IsDir() {
			continue
		}
		id, ext, err := parseFileID(name.Name())
		if err != nil {
			if ext != datafileExt && ext != hintFileExt {
				// not one of ours; ignore silently (e.g. stray dotfiles)
				continue
			}
			return nil, err
		}
		if ext != datafileExt && ext != hintFileExt {
			continue
		}
		entries = append(entries, dirEntry{path: filepath.Join(dir, name.Name()), id: id, ext: ext})
	}

	slices.SortFunc(entries, func(a, b dirEntry) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		default:
			return strings.Compare(a.ext, b.ext)
		}
	})
	return entries, nil
}
