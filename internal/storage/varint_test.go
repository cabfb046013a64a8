package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadVarint_RoundTrip(t *testing.T) {
	r := require.New(t)

	for i := uint64(0); i < 2048; i++ {
		bs := encodeVarintForTest(i)
		v, n, err := ReadVarint(bytes.NewReader(bs))
		r.NoError(err)
		r.Equal(i, v)
		r.Equal(len(bs), n)
	}
}

func TestReadVarint_ThreeByteSequence(t *testing.T) {
	r := require.New(t)

	v, n, err := ReadVarint(bytes.NewReader([]byte{0x81, 0x81, 0x01}))
	r.NoError(err)
	r.Equal(3, n)
	r.Equal(uint64(0b100000010000001), v)
}

func TestReadVarint_NineByteSequence(t *testing.T) {
	r := require.New(t)

	bs := append(bytes.Repeat([]byte{0x81}, 8), 0x01)
	v, n, err := ReadVarint(bytes.NewReader(bs))
	r.NoError(err)
	r.Equal(9, n)
	r.Equal(uint64(0x0204081020408101), v)
}

func TestReadVarint_NeverExceedsNineBytes(t *testing.T) {
	r := require.New(t)

	// All continuation bits set; without the nine-byte cap this would
	// read forever.
	bs := bytes.Repeat([]byte{0xff}, 20)
	_, n, err := ReadVarint(bytes.NewReader(bs))
	r.NoError(err)
	r.Equal(9, n)
}

func TestReadVarint_ShortInput(t *testing.T) {
	r := require.New(t)

	_, _, err := ReadVarint(bytes.NewReader([]byte{0x81, 0x81}))
	r.ErrorIs(err, ErrMalformedVarint)
}

func TestReadVarintAt(t *testing.T) {
	r := require.New(t)

	buf := []byte{0xDE, 0xAD, 0x81, 0x81, 0x01, 0xBE, 0xEF}
	v, n, err := ReadVarintAt(buf, 2)
	r.NoError(err)
	r.Equal(3, n)
	r.Equal(uint64(0b100000010000001), v)
}

// encodeVarintForTest mirrors SQLite's varint encoding for small test
// fixtures; production code only ever decodes, since the reader never
// writes to the file.
func encodeVarintForTest(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}

	var groups []byte
	for v > 0 {
		groups = append(groups, byte(v&0x7f))
		v >>= 7
	}

	// groups is least-significant-first; reverse to big-endian order and
	// set continuation bits on every byte but the last.
	out := make([]byte, len(groups))
	for i, g := range groups {
		out[len(groups)-1-i] = g
	}
	for i := 0; i < len(out)-1; i++ {
		out[i] |= 0x80
	}
	return out
}
