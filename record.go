package cask

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// A Record is one (timestamp, key, value) unit as it is appended to a
// datafile. The on-disk layout is fixed-width and has no padding:
//
//	offset  size  field
//	  0      8    timestamp (u64, big-endian)
//	  8      4    key_size  (u32, big-endian)
//	 12      4    value_size (u32, big-endian)
//	 16      K    key bytes
//	 16+K    V    value bytes
type Record struct {
	Timestamp uint64
	Key       []byte
	Value     []byte
}

// section lengths in bytes
const (
	timestampLen = 8
	keySizeLen   = 4
	valueSizeLen = 4
	// recordHeaderLen is the fixed header size before key/value bytes.
	recordHeaderLen = timestampLen + keySizeLen + valueSizeLen
)

// byteOrder is used for every integer field in both the datafile and the
// hint file formats.
var byteOrder = binary.BigEndian

// newRecord stamps the current wall-clock time (seconds since epoch) as the
// record's timestamp. The caller never sets this directly.
func newRecord(key, value []byte) Record {
	return Record{
		Timestamp: uint64(time.Now().Unix()),
		Key:       key,
		Value:     value,
	}
}

// encode is deterministic: length is always recordHeaderLen + len(Key) +
// len(Value), with no padding or alignment.
func (r Record) encode() []byte {
	buf := make([]byte, recordHeaderLen+len(r.Key)+len(r.Value))
	byteOrder.PutUint64(buf[0:8], r.Timestamp)
	byteOrder.PutUint32(buf[8:12], uint32(len(r.Key)))
	byteOrder.PutUint32(buf[12:16], uint32(len(r.Value)))
	copy(buf[recordHeaderLen:], r.Key)
	copy(buf[recordHeaderLen+len(r.Key):], r.Value)
	return buf
}

// decodeRecord reads exactly the bytes needed for one record from r. It
// fails with ErrShortRead if the stream ends before the full header, key,
// and value have been consumed.
func decodeRecord(r io.Reader) (Record, error) {
	header := make([]byte, recordHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, fmt.Errorf("%w: record header: %v", ErrShortRead, err)
		}
		return Record{}, fmt.Errorf("%w: record header: %v", ErrIO, err)
	}

	timestamp := byteOrder.Uint64(header[0:8])
	keySize := byteOrder.Uint32(header[8:12])
	valueSize := byteOrder.Uint32(header[12:16])

	body := make([]byte, int(keySize)+int(valueSize))
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, fmt.Errorf("%w: record body: %v", ErrShortRead, err)
		}
		return Record{}, fmt.Errorf("%w: record body: %v", ErrIO, err)
	}

	return Record{
		Timestamp: timestamp,
		Key:       body[:keySize],
		Value:     body[keySize:],
	}, nil
}
