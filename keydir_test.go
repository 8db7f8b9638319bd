package cask

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeydirInsertLookup(t *testing.T) {
	kd := newKeydir()
	entry := KeydirEntry{FileID: 1, Offset: 10, ValueSize: 5, Timestamp: 100}

	kd.insert([]byte("k"), entry)

	got, err := kd.lookup([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, entry, got)
}

func TestKeydirLookupNotFound(t *testing.T) {
	kd := newKeydir()
	_, err := kd.lookup([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestKeydirInsertOverwrites(t *testing.T) {
	kd := newKeydir()
	kd.insert([]byte("k"), KeydirEntry{FileID: 1, Offset: 0, Timestamp: 1})
	kd.insert([]byte("k"), KeydirEntry{FileID: 1, Offset: 50, Timestamp: 2})

	got, err := kd.lookup([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, uint64(50), got.Offset)
}

func TestKeydirInsertIfNewerRespectsTimestamp(t *testing.T) {
	kd := newKeydir()
	newer := KeydirEntry{FileID: 1, Offset: 10, Timestamp: 100}
	older := KeydirEntry{FileID: 1, Offset: 20, Timestamp: 50}

	require.True(t, kd.insertIfNewer([]byte("k"), newer))
	require.False(t, kd.insertIfNewer([]byte("k"), older))

	got, err := kd.lookup([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, newer, got)
}

func TestKeydirInsertIfNewerTieBreaksOnFileID(t *testing.T) {
	kd := newKeydir()
	first := KeydirEntry{FileID: 1, Offset: 0, Timestamp: 100}
	second := KeydirEntry{FileID: 2, Offset: 0, Timestamp: 100}

	require.True(t, kd.insertIfNewer([]byte("k"), first))
	require.True(t, kd.insertIfNewer([]byte("k"), second))

	got, err := kd.lookup([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.FileID)
}

func TestKeydirRemove(t *testing.T) {
	kd := newKeydir()
	kd.insert([]byte("k"), KeydirEntry{FileID: 1})

	require.NoError(t, kd.remove([]byte("k")))
	_, err := kd.lookup([]byte("k"))
	require.True(t, errors.Is(err, ErrNotFound))

	require.ErrorIs(t, kd.remove([]byte("k")), ErrNotFound)
}
