// Package btree implements read-only traversal of SQLite's on-disk B-tree
// structure: table trees keyed by integer row id, and index trees keyed by
// a tuple of column values.
package btree

import (
	"errors"
	"fmt"

	"github.com/joeandaverde/litedb/internal/pager"
	"github.com/joeandaverde/litedb/internal/storage"
)

// ErrNotFound is returned when a search completes without locating a
// matching row-id or tuple.
var ErrNotFound = errors.New("btree: not found")

// pageSource is the subset of *pager.Pager that search needs, so tests can
// substitute a fake.
type pageSource interface {
	Read(pageNumber int) (*storage.Page, error)
}

var _ pageSource = (*pager.Pager)(nil)

// SearchRowID walks the table b-tree rooted at rootPage looking for the
// given row id, returning its decoded record.
func SearchRowID(p pageSource, rootPage int, rowID int64, encoding storage.TextEncoding) (storage.Record, error) {
	page, err := p.Read(rootPage)
	if err != nil {
		return storage.Record{}, err
	}

	switch page.Header.Type {
	case storage.PageTypeTableInterior:
		child, err := descendTableInterior(page, rowID)
		if err != nil {
			return storage.Record{}, err
		}
		return SearchRowID(p, child, rowID, encoding)

	case storage.PageTypeTableLeaf:
		return searchTableLeaf(page, rowID, encoding)

	default:
		return storage.Record{}, fmt.Errorf("btree: page %d has unexpected type %s for table search", rootPage, page.Header.Type)
	}
}

// descendTableInterior finds, among an interior page's cells, the smallest
// key >= rowID and returns its child page; if none qualifies it returns
// the page's right-child pointer.
func descendTableInterior(page *storage.Page, rowID int64) (int, error) {
	count := page.CellCount()
	lo, hi := 0, count // hi is the first index known to have key >= rowID
	for lo < hi {
		mid := (lo + hi) / 2
		cell, err := page.TableInteriorCell(mid)
		if err != nil {
			return 0, err
		}
		if cell.Key >= rowID {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	if hi == count {
		return int(page.Header.RightChild), nil
	}
	cell, err := page.TableInteriorCell(hi)
	if err != nil {
		return 0, err
	}
	return int(cell.ChildPage), nil
}

func searchTableLeaf(page *storage.Page, rowID int64, encoding storage.TextEncoding) (storage.Record, error) {
	count := page.CellCount()
	lo, hi := 0, count
	for lo < hi {
		mid := (lo + hi) / 2
		cell, err := page.TableLeafCell(mid)
		if err != nil {
			return storage.Record{}, err
		}
		switch {
		case cell.RowID == rowID:
			return storage.ParseRecord(cell.Payload, encoding)
		case cell.RowID < rowID:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return storage.Record{}, ErrNotFound
}

// IndexResult is what a successful index search yields: the matching
// index record (key tuple + trailing row id) plus the row id extracted
// from it for the caller's secondary table lookup.
type IndexResult struct {
	Record storage.Record
	RowID  int64
}

// SearchIndex walks the index b-tree rooted at rootPage looking for key,
// a tuple of column values. The stored index key is the tuple followed by
// a trailing row id; comparison is over the key-length prefix only.
func SearchIndex(p pageSource, rootPage int, key []storage.Value, encoding storage.TextEncoding) (IndexResult, error) {
	page, err := p.Read(rootPage)
	if err != nil {
		return IndexResult{}, err
	}

	switch page.Header.Type {
	case storage.PageTypeIndexInterior:
		child, matched, err := descendIndexInterior(page, key, encoding)
		if err != nil {
			return IndexResult{}, err
		}
		if matched != nil {
			return *matched, nil
		}
		return SearchIndex(p, child, key, encoding)

	case storage.PageTypeIndexLeaf:
		return searchIndexLeaf(page, key, encoding)

	default:
		return IndexResult{}, fmt.Errorf("btree: page %d has unexpected type %s for index search", rootPage, page.Header.Type)
	}
}

// descendIndexInterior binary-searches for the smallest cell whose key
// prefix is >= the search key. An exact prefix match on an interior page
// is itself a hit: an index interior cell holds a full index entry (key
// columns plus trailing row id) that is not repeated in any leaf, so the
// search returns it rather than descending further.
func descendIndexInterior(page *storage.Page, key []storage.Value, encoding storage.TextEncoding) (int, *IndexResult, error) {
	count := page.CellCount()
	lo, hi := 0, count
	for lo < hi {
		mid := (lo + hi) / 2
		cell, err := page.IndexInteriorCell(mid)
		if err != nil {
			return 0, nil, err
		}
		rec, err := storage.ParseRecord(cell.Payload, encoding)
		if err != nil {
			return 0, nil, err
		}
		cmp, err := comparePrefix(rec.Values, key)
		if err != nil {
			return 0, nil, err
		}
		if cmp >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	if hi == count {
		return int(page.Header.RightChild), nil, nil
	}

	cell, err := page.IndexInteriorCell(hi)
	if err != nil {
		return 0, nil, err
	}
	rec, err := storage.ParseRecord(cell.Payload, encoding)
	if err != nil {
		return 0, nil, err
	}
	cmp, err := comparePrefix(rec.Values, key)
	if err != nil {
		return 0, nil, err
	}
	if cmp == 0 {
		rowID, ok := rec.Values[len(rec.Values)-1].Int64()
		if !ok {
			return 0, nil, fmt.Errorf("btree: index record trailing value is not an integer row id")
		}
		return 0, &IndexResult{Record: rec, RowID: rowID}, nil
	}
	return int(cell.ChildPage), nil, nil
}

func searchIndexLeaf(page *storage.Page, key []storage.Value, encoding storage.TextEncoding) (IndexResult, error) {
	count := page.CellCount()
	lo, hi := 0, count
	for lo < hi {
		mid := (lo + hi) / 2
		cell, err := page.IndexLeafCell(mid)
		if err != nil {
			return IndexResult{}, err
		}
		rec, err := storage.ParseRecord(cell.Payload, encoding)
		if err != nil {
			return IndexResult{}, err
		}
		cmp, err := comparePrefix(rec.Values, key)
		if err != nil {
			return IndexResult{}, err
		}
		if cmp >= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	if hi == count {
		return IndexResult{}, ErrNotFound
	}
	cell, err := page.IndexLeafCell(hi)
	if err != nil {
		return IndexResult{}, err
	}
	rec, err := storage.ParseRecord(cell.Payload, encoding)
	if err != nil {
		return IndexResult{}, err
	}
	cmp, err := comparePrefix(rec.Values, key)
	if err != nil {
		return IndexResult{}, err
	}
	if cmp != 0 {
		return IndexResult{}, ErrNotFound
	}
	rowID, ok := rec.Values[len(rec.Values)-1].Int64()
	if !ok {
		return IndexResult{}, fmt.Errorf("btree: index record trailing value is not an integer row id")
	}
	return IndexResult{Record: rec, RowID: rowID}, nil
}

// comparePrefix lexicographically compares stored[:len(key)] against key.
// stored is expected to be at least len(key)+1 long (key columns plus the
// trailing row id); a shorter record is malformed.
func comparePrefix(stored []storage.Value, key []storage.Value) (int, error) {
	if len(stored) <= len(key) {
		return 0, fmt.Errorf("%w: index record has no row id column after the search key columns", storage.ErrTruncatedRecord)
	}
	for i, k := range key {
		c, err := compareValue(stored[i], k)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

// compareValue compares two column values. Both are expected to be of
// compatible dynamic type (SQLite's type affinity ensures this for a
// well-formed index); mismatched kinds are ordered by a fixed precedence
// (NULL < number < text < blob), matching SQLite's own type-ordering rule.
func compareValue(a, b storage.Value) (int, error) {
	if a.Kind != b.Kind {
		return rank(a.Kind) - rank(b.Kind), nil
	}

	switch a.Kind {
	case storage.KindNull:
		return 0, nil
	case storage.KindInt:
		switch {
		case a.Int < b.Int:
			return -1, nil
		case a.Int > b.Int:
			return 1, nil
		default:
			return 0, nil
		}
	case storage.KindFloat:
		switch {
		case a.Float < b.Float:
			return -1, nil
		case a.Float > b.Float:
			return 1, nil
		default:
			return 0, nil
		}
	case storage.KindText, storage.KindBlob:
		switch {
		case string(a.Bytes) < string(b.Bytes):
			return -1, nil
		case string(a.Bytes) > string(b.Bytes):
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("btree: unsupported value kind %d in comparison", a.Kind)
	}
}

func rank(k storage.ValueKind) int {
	switch k {
	case storage.KindNull:
		return 0
	case storage.KindInt, storage.KindFloat:
		return 1
	case storage.KindText:
		return 2
	case storage.KindBlob:
		return 3
	default:
		return 4
	}
}
