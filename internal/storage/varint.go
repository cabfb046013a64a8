package storage

import (
	"bytes"
	"fmt"
	"io"
)

// ReadVarint reads a SQLite varint: a big-endian, base-128 encoded integer
// occupying 1 to 9 bytes. For the first eight bytes the high bit of each
// byte is a continuation flag and the low seven bits contribute to the
// result. If a ninth byte is reached it contributes all eight of its bits,
// continuation flag included, and decoding always stops there.
//
// It returns the decoded value and the number of bytes consumed.
func ReadVarint(r io.ByteReader) (uint64, int, error) {
	var result uint64

	for i := 0; i < 9; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, i, fmt.Errorf("%w: %v", ErrMalformedVarint, err)
		}

		if i == 8 {
			result = (result << 8) | uint64(b)
			return result, i + 1, nil
		}

		result = (result << 7) | uint64(b&0x7f)
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}

	// Unreachable: the loop above always returns by the ninth iteration.
	return result, 9, nil
}

// ReadVarintAt decodes a varint starting at offset within buf, without
// requiring the caller to construct a reader.
func ReadVarintAt(buf []byte, offset int) (uint64, int, error) {
	if offset < 0 || offset > len(buf) {
		return 0, 0, fmt.Errorf("%w: offset %d outside buffer of length %d", ErrShortRead, offset, len(buf))
	}
	return ReadVarint(bytes.NewReader(buf[offset:]))
}
