package storage

import "errors"

// Sentinel errors for the decode-time failures a malformed or truncated
// SQLite file can produce. Wrap these with fmt.Errorf("...: %w", ...) so
// callers can errors.Is/errors.As past the added context.
var (
	// ErrShortRead is returned when the backing file ends inside a header,
	// cell, or record that the format says should be there.
	ErrShortRead = errors.New("storage: short read")

	// ErrBadMagic is returned when the file header's leading 16 bytes are
	// not the SQLite format 3 magic string.
	ErrBadMagic = errors.New("storage: bad magic")

	// ErrBadEncoding is returned when the file header's text encoding code
	// is not 1 (UTF-8), 2 (UTF-16LE), or 3 (UTF-16BE).
	ErrBadEncoding = errors.New("storage: bad text encoding")

	// ErrUnknownPageType is returned when a page's first byte is not one
	// of the four recognized B-tree page type codes.
	ErrUnknownPageType = errors.New("storage: unknown page type")

	// ErrMalformedVarint is returned when a varint does not terminate
	// within nine bytes of available input.
	ErrMalformedVarint = errors.New("storage: malformed varint")

	// ErrUnknownTypeCode is returned when a record's column type code is
	// reserved (10, 11) or otherwise not a legal serial type.
	ErrUnknownTypeCode = errors.New("storage: unknown record type code")

	// ErrTruncatedRecord is returned when a record's declared header or
	// body sizes don't match the bytes actually available in its cell.
	ErrTruncatedRecord = errors.New("storage: truncated record")
)
