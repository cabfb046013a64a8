package storage

import (
	"encoding/binary"
	"fmt"
)

// FileHeaderSize is the fixed length of the SQLite database file header.
const FileHeaderSize = 100

const magic = "SQLite format 3\x00"

// TextEncoding identifies how text values are stored in record bodies.
type TextEncoding uint32

const (
	EncodingUTF8    TextEncoding = 1
	EncodingUTF16LE TextEncoding = 2
	EncodingUTF16BE TextEncoding = 3
)

func (e TextEncoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(e))
	}
}

// FileHeader is the 100-byte structure at offset 0 of a SQLite database
// file. Only PageSize and TextEncoding drive traversal; the rest is parsed
// and retained for diagnostics.
type FileHeader struct {
	PageSize                uint32
	FileFormatWriteVersion  byte
	FileFormatReadVersion   byte
	ReservedSpace           byte
	MaxEmbeddedPayloadFrac  byte
	MinEmbeddedPayloadFrac  byte
	LeafPayloadFraction     byte
	FileChangeCounter       uint32
	SizeInPages             uint32
	FirstFreelistPage       uint32
	FreelistPageCount       uint32
	SchemaCookie            uint32
	SchemaFormat            uint32
	DefaultPageCacheSize    uint32
	LargestRootBTreePage    uint32
	TextEncoding            TextEncoding
	UserVersion             uint32
	IncrementalVacuumMode   uint32
	ApplicationID           uint32
	VersionValidFor         uint32
	SQLiteVersionNumber     uint32
}

// ParseFileHeader parses the 100-byte database header. buf must be at least
// FileHeaderSize bytes long.
func ParseFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < FileHeaderSize {
		return FileHeader{}, fmt.Errorf("%w: file header requires %d bytes, got %d", ErrShortRead, FileHeaderSize, len(buf))
	}

	if string(buf[0:16]) != magic {
		return FileHeader{}, fmt.Errorf("%w: %q", ErrBadMagic, buf[0:16])
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	pageSize := uint32(rawPageSize)
	if rawPageSize == 1 {
		pageSize = 65536
	}

	encoding := TextEncoding(binary.BigEndian.Uint32(buf[56:60]))
	switch encoding {
	case EncodingUTF8, EncodingUTF16LE, EncodingUTF16BE:
	default:
		return FileHeader{}, fmt.Errorf("%w: %d", ErrBadEncoding, uint32(encoding))
	}

	return FileHeader{
		PageSize:               pageSize,
		FileFormatWriteVersion: buf[18],
		FileFormatReadVersion:  buf[19],
		ReservedSpace:          buf[20],
		MaxEmbeddedPayloadFrac: buf[21],
		MinEmbeddedPayloadFrac: buf[22],
		LeafPayloadFraction:    buf[23],
		FileChangeCounter:      binary.BigEndian.Uint32(buf[24:28]),
		SizeInPages:            binary.BigEndian.Uint32(buf[28:32]),
		FirstFreelistPage:      binary.BigEndian.Uint32(buf[32:36]),
		FreelistPageCount:      binary.BigEndian.Uint32(buf[36:40]),
		SchemaCookie:           binary.BigEndian.Uint32(buf[40:44]),
		SchemaFormat:           binary.BigEndian.Uint32(buf[44:48]),
		DefaultPageCacheSize:   binary.BigEndian.Uint32(buf[48:52]),
		LargestRootBTreePage:   binary.BigEndian.Uint32(buf[52:56]),
		TextEncoding:           encoding,
		UserVersion:            binary.BigEndian.Uint32(buf[60:64]),
		IncrementalVacuumMode:  binary.BigEndian.Uint32(buf[64:68]),
		ApplicationID:          binary.BigEndian.Uint32(buf[68:72]),
		VersionValidFor:        binary.BigEndian.Uint32(buf[92:96]),
		SQLiteVersionNumber:    binary.BigEndian.Uint32(buf[96:100]),
	}, nil
}
