package cask

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRecordEncodeLayout(t *testing.T) {
	// scenario 5: encode of {timestamp=1, key="k", value="v"} produces 18
	// bytes with the exact layout spec.md pins.
	r := Record{Timestamp: 1, Key: []byte("k"), Value: []byte("v")}
	got := r.encode()

	want := []byte{
		0, 0, 0, 0, 0, 0, 0, 1, // timestamp
		0, 0, 0, 1, // key_size
		0, 0, 0, 1, // value_size
		'k',
		'v',
	}
	require.Equal(t, want, got)
	require.Len(t, got, 18)
}

func TestRecordCodecRoundTrip(t *testing.T) {
	// P4: decode(encode(r)) == r for every record.
	cases := []Record{
		{Timestamp: 0, Key: []byte("a"), Value: []byte("b")},
		{Timestamp: 1700000000, Key: []byte("hello"), Value: []byte("world")},
		{Timestamp: 42, Key: []byte(""), Value: []byte("")},
		{Timestamp: 42, Key: []byte("k"), Value: bytes.Repeat([]byte("x"), 4096)},
	}

	for _, want := range cases {
		got, err := decodeRecord(bytes.NewReader(want.encode()))
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeRecordShortRead(t *testing.T) {
	full := Record{Timestamp: 1, Key: []byte("key"), Value: []byte("value")}.encode()

	for n := 0; n < len(full); n++ {
		_, err := decodeRecord(bytes.NewReader(full[:n]))
		if !errors.Is(err, ErrShortRead) {
			t.Fatalf("truncated to %d bytes: got %v, want ErrShortRead", n, err)
		}
	}
}
