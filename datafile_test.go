package cask

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDatafileAppendAndReadAt(t *testing.T) {
	dir := t.TempDir()
	df, err := createActiveDatafile(dir, 1)
	require.NoError(t, err)
	defer df.close()

	entry1, err := df.append([]byte("key"), []byte("value"))
	require.NoError(t, err)
	require.Equal(t, uint64(0), entry1.Offset)

	entry2, err := df.append([]byte("key2"), []byte("value2"))
	require.NoError(t, err)
	// P6: the second put's offset is strictly greater than the first's.
	require.Greater(t, entry2.Offset, entry1.Offset)

	r1, err := df.readAt(entry1.Offset)
	require.NoError(t, err)
	require.Equal(t, []byte("key"), r1.Key)
	require.Equal(t, []byte("value"), r1.Value)

	r2, err := df.readAt(entry2.Offset)
	require.NoError(t, err)
	require.Equal(t, []byte("key2"), r2.Key)
	require.Equal(t, []byte("value2"), r2.Value)
}

func TestDatafileReadOnlyRejectsAppend(t *testing.T) {
	dir := t.TempDir()
	active, err := createActiveDatafile(dir, 1)
	require.NoError(t, err)
	_, err = active.append([]byte("k"), []byte("v"))
	require.NoError(t, err)
	require.NoError(t, active.close())

	ro, err := openDatafileReadOnly(datafilePath(dir, 1), 1)
	require.NoError(t, err)
	defer ro.close()

	_, err = ro.append([]byte("k2"), []byte("v2"))
	require.ErrorIs(t, err, ErrReadOnly)

	r, err := ro.readAt(0)
	require.NoError(t, err)
	require.Equal(t, []byte("k"), r.Key)
}

func TestDatafileCreateActiveCollision(t *testing.T) {
	dir := t.TempDir()
	_, err := os.Create(filepath.Join(dir, "5.df"))
	require.NoError(t, err)

	_, err = createActiveDatafile(dir, 5)
	require.ErrorIs(t, err, ErrIO)
}
