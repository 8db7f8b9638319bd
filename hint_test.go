package cask

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHintFileAppendAndNext(t *testing.T) {
	dir := t.TempDir()
	h, err := createHintFile(dir, 1)
	require.NoError(t, err)

	entries := []struct {
		key   string
		entry KeydirEntry
	}{
		{"a", KeydirEntry{Timestamp: 1, Offset: 0, ValueSize: 3}},
		{"bb", KeydirEntry{Timestamp: 2, Offset: 20, ValueSize: 7}},
		{"ccc", KeydirEntry{Timestamp: 3, Offset: 40, ValueSize: 1}},
	}
	for _, e := range entries {
		require.NoError(t, h.append(e.entry, []byte(e.key)))
	}
	require.NoError(t, h.close())

	r, err := openHintFileReadOnly(hintFilePath(dir, 1), 1)
	require.NoError(t, err)
	defer r.close()

	// P5: hint replay yields one keydir entry per record, in append order,
	// file id filled from the hint's own id.
	for _, want := range entries {
		entry, key, err := r.next()
		require.NoError(t, err)
		require.Equal(t, want.key, string(key))
		require.Equal(t, uint64(1), entry.FileID)
		require.Equal(t, want.entry.Offset, entry.Offset)
		require.Equal(t, want.entry.Timestamp, entry.Timestamp)
		require.Equal(t, want.entry.ValueSize, entry.ValueSize)
	}

	_, _, err = r.next()
	require.ErrorIs(t, err, ErrEndOfFile)
}

func TestHintFileReadOnlyRejectsAppend(t *testing.T) {
	dir := t.TempDir()
	h, err := createHintFile(dir, 1)
	require.NoError(t, err)
	require.NoError(t, h.close())

	r, err := openHintFileReadOnly(hintFilePath(dir, 1), 1)
	require.NoError(t, err)
	defer r.close()

	err = r.append(KeydirEntry{}, []byte("k"))
	require.ErrorIs(t, err, ErrReadOnly)
}

func TestHintFileEmptyIsImmediatelyEOF(t *testing.T) {
	dir := t.TempDir()
	h, err := createHintFile(dir, 1)
	require.NoError(t, err)
	require.NoError(t, h.close())

	r, err := openHintFileReadOnly(hintFilePath(dir, 1), 1)
	require.NoError(t, err)
	defer r.close()

	_, _, err = r.next()
	require.ErrorIs(t, err, ErrEndOfFile)
}
