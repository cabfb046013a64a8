package storage

import (
	"encoding/binary"
	"fmt"
)

// TableLeafCell holds a table row: its integer row id and the record
// payload stored under it.
type TableLeafCell struct {
	RowID   int64
	Payload []byte

	// Overflow is true when Payload was truncated to what fits on the page
	// and the remainder spills into overflow pages. The reader does not
	// follow overflow chains; SPEC_FULL.md §1 puts overflow pages out of
	// scope.
	Overflow bool
}

// TableInteriorCell routes table b-tree traversal: every row with row id
// <= Key lives at or under ChildPage.
type TableInteriorCell struct {
	ChildPage uint32
	Key       int64
}

// IndexLeafCell holds one index entry: a record whose columns are the
// indexed expression(s) followed by the referenced table row id.
type IndexLeafCell struct {
	Payload  []byte
	Overflow bool
}

// IndexInteriorCell routes index b-tree traversal the same way
// TableInteriorCell does, but keyed by a record rather than a bare integer.
type IndexInteriorCell struct {
	ChildPage uint32
	Payload   []byte
	Overflow  bool
}

// localPayload applies SQLite's payload-overflow formula for the given page
// size and the cell kind's minLocal/maxLocal limits (from
// tableLeafLocalLimits or indexLocalLimits; see the format's "U" and "P"
// definitions) and reports how many of the payloadSize bytes are stored
// locally on the page.
func localPayload(payloadSize, pageSize, minLocal, maxLocal int) int {
	if payloadSize <= maxLocal {
		return payloadSize
	}

	k := minLocal + (payloadSize-minLocal)%(pageSize-4)
	if k <= maxLocal {
		return k
	}
	return minLocal
}

// tableLeafLocalLimits returns (maxLocal, minLocal) for table b-tree leaf
// cells per the file format's overflow rules.
func tableLeafLocalLimits(pageSize int) (int, int) {
	maxLocal := pageSize - 35
	minLocal := (pageSize-12)*32/255 - 23
	return maxLocal, minLocal
}

// indexLocalLimits returns (maxLocal, minLocal) for index cells (both
// interior and leaf) and table interior cells, which share the same
// formula.
func indexLocalLimits(pageSize int) (int, int) {
	maxLocal := (pageSize-12)*64/255 - 23
	minLocal := (pageSize-12)*32/255 - 23
	return maxLocal, minLocal
}

// TableLeafCell decodes the i-th cell of a table-leaf page.
func (p *Page) TableLeafCell(i int) (TableLeafCell, error) {
	if p.Header.Type != PageTypeTableLeaf {
		return TableLeafCell{}, fmt.Errorf("%w: expected table-leaf page, got %s", ErrUnknownPageType, p.Header.Type)
	}

	offset, err := p.CellPointer(i)
	if err != nil {
		return TableLeafCell{}, err
	}

	payloadSize, n, err := ReadVarintAt(p.Data, offset)
	if err != nil {
		return TableLeafCell{}, err
	}
	offset += n

	rowID, n, err := ReadVarintAt(p.Data, offset)
	if err != nil {
		return TableLeafCell{}, err
	}
	offset += n

	maxLocal, minLocal := tableLeafLocalLimits(len(p.Data))
	localSize := localPayload(int(payloadSize), len(p.Data), minLocal, maxLocal)
	if localSize < 0 || offset+localSize > len(p.Data) {
		return TableLeafCell{}, fmt.Errorf("%w: table leaf cell payload runs past page", ErrTruncatedRecord)
	}

	return TableLeafCell{
		RowID:    int64(rowID),
		Payload:  p.Data[offset : offset+localSize],
		Overflow: localSize < int(payloadSize),
	}, nil
}

// TableInteriorCell decodes the i-th cell of a table-interior page.
func (p *Page) TableInteriorCell(i int) (TableInteriorCell, error) {
	if p.Header.Type != PageTypeTableInterior {
		return TableInteriorCell{}, fmt.Errorf("%w: expected table-interior page, got %s", ErrUnknownPageType, p.Header.Type)
	}

	offset, err := p.CellPointer(i)
	if err != nil {
		return TableInteriorCell{}, err
	}
	if offset+4 > len(p.Data) {
		return TableInteriorCell{}, fmt.Errorf("%w: table interior cell truncated", ErrShortRead)
	}

	childPage := binary.BigEndian.Uint32(p.Data[offset : offset+4])
	key, _, err := ReadVarintAt(p.Data, offset+4)
	if err != nil {
		return TableInteriorCell{}, err
	}

	return TableInteriorCell{ChildPage: childPage, Key: int64(key)}, nil
}

// IndexLeafCell decodes the i-th cell of an index-leaf page.
func (p *Page) IndexLeafCell(i int) (IndexLeafCell, error) {
	if p.Header.Type != PageTypeIndexLeaf {
		return IndexLeafCell{}, fmt.Errorf("%w: expected index-leaf page, got %s", ErrUnknownPageType, p.Header.Type)
	}

	offset, err := p.CellPointer(i)
	if err != nil {
		return IndexLeafCell{}, err
	}

	payloadSize, n, err := ReadVarintAt(p.Data, offset)
	if err != nil {
		return IndexLeafCell{}, err
	}
	offset += n

	maxLocal, minLocal := indexLocalLimits(len(p.Data))
	localSize := localPayload(int(payloadSize), len(p.Data), minLocal, maxLocal)
	if localSize < 0 || offset+localSize > len(p.Data) {
		return IndexLeafCell{}, fmt.Errorf("%w: index leaf cell payload runs past page", ErrTruncatedRecord)
	}

	return IndexLeafCell{
		Payload:  p.Data[offset : offset+localSize],
		Overflow: localSize < int(payloadSize),
	}, nil
}

// IndexInteriorCell decodes the i-th cell of an index-interior page.
func (p *Page) IndexInteriorCell(i int) (IndexInteriorCell, error) {
	if p.Header.Type != PageTypeIndexInterior {
		return IndexInteriorCell{}, fmt.Errorf("%w: expected index-interior page, got %s", ErrUnknownPageType, p.Header.Type)
	}

	offset, err := p.CellPointer(i)
	if err != nil {
		return IndexInteriorCell{}, err
	}
	if offset+4 > len(p.Data) {
		return IndexInteriorCell{}, fmt.Errorf("%w: index interior cell truncated", ErrShortRead)
	}
	childPage := binary.BigEndian.Uint32(p.Data[offset : offset+4])
	offset += 4

	payloadSize, n, err := ReadVarintAt(p.Data, offset)
	if err != nil {
		return IndexInteriorCell{}, err
	}
	offset += n

	maxLocal, minLocal := indexLocalLimits(len(p.Data))
	localSize := localPayload(int(payloadSize), len(p.Data), minLocal, maxLocal)
	if localSize < 0 || offset+localSize > len(p.Data) {
		return IndexInteriorCell{}, fmt.Errorf("%w: index interior cell payload runs past page", ErrTruncatedRecord)
	}

	return IndexInteriorCell{
		ChildPage: childPage,
		Payload:   p.Data[offset : offset+localSize],
		Overflow:  localSize < int(payloadSize),
	}, nil
}
