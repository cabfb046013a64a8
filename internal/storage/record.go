package storage

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// ValueKind discriminates the dynamic type carried by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindBlob
	KindText
)

// Value is one decoded record column. Exactly one of the Int/Float/Bytes
// fields is meaningful, selected by Kind.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Bytes []byte // Blob bytes, or Text already decoded to UTF-8
}

// Int64 coerces a Value to an int64, following the same numeric widening
// the on-disk format itself uses for INTEGER PRIMARY KEY aliasing: floats
// truncate, text and blobs are rejected. Used when an index column or a
// rowid alias needs to be compared as an integer key.
func (v Value) Int64() (int64, bool) {
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindFloat:
		return int64(v.Float), true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindText:
		return string(v.Bytes)
	case KindBlob:
		return fmt.Sprintf("blob(%d)", len(v.Bytes))
	default:
		return "?"
	}
}

// Record is the decoded form of a table or index cell payload: an ordered
// list of column values.
type Record struct {
	Values []Value
}

// ParseRecord decodes a record payload (the bytes immediately following a
// cell's row id or payload-size varint) per the file format's record
// format: a varint header size, a run of varint serial type codes, and a
// body holding each column's bytes back to back in the same order.
func ParseRecord(payload []byte, encoding TextEncoding) (Record, error) {
	headerSize, n, err := ReadVarintAt(payload, 0)
	if err != nil {
		return Record{}, err
	}
	if int(headerSize) > len(payload) {
		return Record{}, fmt.Errorf("%w: header size %d exceeds payload length %d", ErrTruncatedRecord, headerSize, len(payload))
	}

	var serialTypes []uint64
	pos := n
	for pos < int(headerSize) {
		st, n, err := ReadVarintAt(payload, pos)
		if err != nil {
			return Record{}, err
		}
		serialTypes = append(serialTypes, st)
		pos += n
	}

	values := make([]Value, 0, len(serialTypes))
	bodyPos := int(headerSize)
	for _, st := range serialTypes {
		v, width, err := decodeValue(st, payload[bodyPos:], encoding)
		if err != nil {
			return Record{}, err
		}
		values = append(values, v)
		bodyPos += width
	}

	return Record{Values: values}, nil
}

// decodeValue decodes a single column given its serial type code and the
// remaining body bytes, returning the value and the number of body bytes
// it consumed.
func decodeValue(serialType uint64, body []byte, encoding TextEncoding) (Value, int, error) {
	switch serialType {
	case 0:
		return Value{Kind: KindNull}, 0, nil
	case 1, 2, 3, 4, 5, 6:
		width := intWidth(serialType)
		if len(body) < width {
			return Value{}, 0, fmt.Errorf("%w: integer of width %d truncated", ErrTruncatedRecord, width)
		}
		return Value{Kind: KindInt, Int: signExtend(body[:width])}, width, nil
	case 7:
		if len(body) < 8 {
			return Value{}, 0, fmt.Errorf("%w: float truncated", ErrTruncatedRecord)
		}
		bits := binary.BigEndian.Uint64(body[:8])
		return Value{Kind: KindFloat, Float: math.Float64frombits(bits)}, 8, nil
	case 8:
		return Value{Kind: KindInt, Int: 0}, 0, nil
	case 9:
		return Value{Kind: KindInt, Int: 1}, 0, nil
	case 10, 11:
		return Value{}, 0, fmt.Errorf("%w: reserved serial type %d", ErrUnknownTypeCode, serialType)
	default:
		if serialType >= 12 && serialType%2 == 0 {
			length := int((serialType - 12) / 2)
			if len(body) < length {
				return Value{}, 0, fmt.Errorf("%w: blob truncated", ErrTruncatedRecord)
			}
			blob := make([]byte, length)
			copy(blob, body[:length])
			return Value{Kind: KindBlob, Bytes: blob}, length, nil
		}
		if serialType >= 13 && serialType%2 == 1 {
			length := int((serialType - 13) / 2)
			if len(body) < length {
				return Value{}, 0, fmt.Errorf("%w: text truncated", ErrTruncatedRecord)
			}
			text, err := decodeText(body[:length], encoding)
			if err != nil {
				return Value{}, 0, err
			}
			return Value{Kind: KindText, Bytes: text}, length, nil
		}
		return Value{}, 0, fmt.Errorf("%w: %d", ErrUnknownTypeCode, serialType)
	}
}

func intWidth(serialType uint64) int {
	switch serialType {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return 3
	case 4:
		return 4
	case 5:
		return 6
	case 6:
		return 8
	default:
		return 0
	}
}

// signExtend performs correct sign extension for an arbitrary-width
// (1 to 8 byte) big-endian two's-complement integer: the bytes are
// right-aligned in an 8-byte buffer pre-filled with 0xff when the top bit
// is set (0x00 otherwise), which covers the file format's 24-bit and
// 48-bit integer serial types that have no native Go type.
func signExtend(b []byte) int64 {
	negative := b[0]&0x80 != 0

	var buf [8]byte
	if negative {
		for i := range buf {
			buf[i] = 0xff
		}
	}
	copy(buf[8-len(b):], b)

	return int64(binary.BigEndian.Uint64(buf[:]))
}

// decodeText converts a record's raw text bytes to UTF-8 according to the
// file header's declared encoding. UTF-8 text is returned as-is; UTF-16
// variants are decoded via the standard library's utf16 package, since no
// example in the reference corpus exercises a third-party codec for it.
func decodeText(b []byte, encoding TextEncoding) ([]byte, error) {
	switch encoding {
	case EncodingUTF8, 0:
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	case EncodingUTF16LE, EncodingUTF16BE:
		if len(b)%2 != 0 {
			return nil, fmt.Errorf("%w: odd-length UTF-16 text", ErrTruncatedRecord)
		}
		units := make([]uint16, len(b)/2)
		for i := range units {
			if encoding == EncodingUTF16LE {
				units[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
			} else {
				units[i] = binary.BigEndian.Uint16(b[i*2 : i*2+2])
			}
		}
		return []byte(string(utf16.Decode(units))), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadEncoding, uint32(encoding))
	}
}
