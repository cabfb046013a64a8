package storage

import (
	"encoding/binary"
	"fmt"
)

// Page is one pageSize-length slice of the database file together with its
// parsed B-tree header. Data always holds the full page starting at the
// page's true file offset; for page 1 that is file offset 0, so cell
// pointer values (which are offsets from the start of the page) index into
// Data directly with no adjustment on either page.
type Page struct {
	Number       int
	HeaderOffset int
	Header       PageHeader
	Data         []byte
}

// ParsePage interprets data (exactly one page's worth of bytes, read from
// the correct file offset for page number) as a B-tree page. number is
// 1-based, matching SQLite's page numbering.
func ParsePage(number int, data []byte) (*Page, error) {
	headerOffset := 0
	if number == 1 {
		headerOffset = FileHeaderSize
	}

	header, err := ParsePageHeader(data, headerOffset)
	if err != nil {
		return nil, err
	}

	return &Page{
		Number:       number,
		HeaderOffset: headerOffset,
		Header:       header,
		Data:         data,
	}, nil
}

// CellCount returns the number of cells on the page.
func (p *Page) CellCount() int {
	return int(p.Header.CellCount)
}

// cellPointerArrayStart is the offset of the first of CellCount big-endian
// uint16 cell pointers, immediately following the page header.
func (p *Page) cellPointerArrayStart() int {
	return p.HeaderOffset + p.Header.Type.HeaderSize()
}

// CellPointer returns the absolute offset, within Data, of the i-th cell
// (0-based).
func (p *Page) CellPointer(i int) (int, error) {
	if i < 0 || i >= p.CellCount() {
		return 0, fmt.Errorf("%w: cell index %d out of range [0,%d)", ErrShortRead, i, p.CellCount())
	}

	arrayStart := p.cellPointerArrayStart()
	pos := arrayStart + i*2
	if len(p.Data) < pos+2 {
		return 0, fmt.Errorf("%w: cell pointer array truncated", ErrShortRead)
	}

	offset := int(binary.BigEndian.Uint16(p.Data[pos : pos+2]))
	if offset < 0 || offset > len(p.Data) {
		return 0, fmt.Errorf("%w: cell pointer %d outside page", ErrShortRead, offset)
	}
	return offset, nil
}
