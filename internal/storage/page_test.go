package storage

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTableLeafPage assembles a minimal one-page table-leaf page (not
// page 1, so no file header offset) containing the given row id/payload
// pairs, for exercising cell decoding without a real database file.
func buildTableLeafPage(pageSize int, rows []struct {
	rowID   int64
	payload []byte
}) []byte {
	data := make([]byte, pageSize)
	data[0] = byte(PageTypeTableLeaf)
	binary.BigEndian.PutUint16(data[3:5], uint16(len(rows)))

	cellContentStart := pageSize
	pointerPos := 8
	for _, row := range rows {
		cellContentStart -= len(row.payload) + 9 // generous upper bound
		cell := make([]byte, 0, len(row.payload)+9)
		cell = appendVarintForTest(cell, uint64(len(row.payload)))
		cell = appendVarintForTest(cell, uint64(row.rowID))
		cell = append(cell, row.payload...)
		copy(data[cellContentStart:], cell)

		binary.BigEndian.PutUint16(data[pointerPos:pointerPos+2], uint16(cellContentStart))
		pointerPos += 2
	}
	binary.BigEndian.PutUint16(data[5:7], uint16(cellContentStart))

	return data
}

func appendVarintForTest(dst []byte, v uint64) []byte {
	return append(dst, encodeVarintForTest(v)...)
}

func TestParsePage_TableLeaf(t *testing.T) {
	r := require.New(t)

	payload1 := []byte{2, 8} // header size 2, one column: integer literal 0
	payload2 := []byte{2, 9} // integer literal 1

	data := buildTableLeafPage(512, []struct {
		rowID   int64
		payload []byte
	}{
		{rowID: 1, payload: payload1},
		{rowID: 2, payload: payload2},
	})

	page, err := ParsePage(2, data)
	r.NoError(err)
	r.Equal(2, page.CellCount())
	r.Equal(PageTypeTableLeaf, page.Header.Type)

	cell, err := page.TableLeafCell(0)
	r.NoError(err)
	r.Equal(int64(1), cell.RowID)
	r.Equal(payload1, cell.Payload)

	cell, err = page.TableLeafCell(1)
	r.NoError(err)
	r.Equal(int64(2), cell.RowID)
	r.Equal(payload2, cell.Payload)
}

func TestParsePage_Page1HeaderOffset(t *testing.T) {
	r := require.New(t)

	data := make([]byte, 512)
	copy(data[0:16], []byte(magic))
	binary.BigEndian.PutUint16(data[16:18], 512)
	binary.BigEndian.PutUint32(data[56:60], uint32(EncodingUTF8))
	data[FileHeaderSize] = byte(PageTypeTableLeaf)
	binary.BigEndian.PutUint16(data[FileHeaderSize+5:FileHeaderSize+7], 512)

	page, err := ParsePage(1, data)
	r.NoError(err)
	r.Equal(FileHeaderSize, page.HeaderOffset)
	r.Equal(0, page.CellCount())
}

func TestParsePage_UnknownType(t *testing.T) {
	r := require.New(t)

	data := make([]byte, 64)
	data[0] = 0xFF
	_, err := ParsePage(2, data)
	r.ErrorIs(err, ErrUnknownPageType)
}
