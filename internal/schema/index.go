// Package schema builds a name-indexed view of a database's
// sqlite_schema table so callers can resolve a table or index by name
// without re-scanning page 1 on every lookup.
package schema

import (
	"fmt"

	radix "github.com/armon/go-radix"

	"github.com/joeandaverde/litedb/internal/storage"
)

// ObjectType distinguishes a schema entry's kind.
type ObjectType string

const (
	ObjectTable ObjectType = "table"
	ObjectIndex ObjectType = "index"
)

// Object is one row of sqlite_schema: a table or index definition.
type Object struct {
	Type     ObjectType
	Name     string
	TblName  string
	RootPage int
	SQL      string
}

// Index resolves schema objects by name in O(k) (k = name length) via a
// radix tree, and resolves automatically-generated unique-index names
// (sqlite_autoindex_<table>_<N>) against their owning table.
type Index struct {
	byName *radix.Tree
}

// Build constructs an Index from the decoded rows of page 1's
// sqlite_schema table (see storage.Record; columns are type, name,
// tbl_name, rootpage, sql in that order).
func Build(schemaRecords []storage.Record) (*Index, error) {
	tree := radix.New()

	for _, rec := range schemaRecords {
		if len(rec.Values) < 5 {
			return nil, fmt.Errorf("schema: record has %d columns, expected 5", len(rec.Values))
		}

		typ, ok := asText(rec.Values[0])
		if !ok {
			return nil, fmt.Errorf("schema: type column is not text")
		}
		name, ok := asText(rec.Values[1])
		if !ok {
			return nil, fmt.Errorf("schema: name column is not text")
		}
		tblName, ok := asText(rec.Values[2])
		if !ok {
			return nil, fmt.Errorf("schema: tbl_name column is not text")
		}
		rootPage, ok := rec.Values[3].Int64()
		if !ok {
			return nil, fmt.Errorf("schema: rootpage column is not numeric")
		}
		sql, _ := asText(rec.Values[4]) // views and some internal entries may have NULL sql

		obj := Object{
			Type:     ObjectType(typ),
			Name:     name,
			TblName:  tblName,
			RootPage: int(rootPage),
			SQL:      sql,
		}
		tree.Insert(name, obj)
	}

	return &Index{byName: tree}, nil
}

func asText(v storage.Value) (string, bool) {
	if v.Kind != storage.KindText {
		return "", false
	}
	return string(v.Bytes), true
}

// Table looks up a table definition by name.
func (idx *Index) Table(name string) (Object, bool) {
	return idx.lookup(name, ObjectTable)
}

// IndexObject looks up an index definition by name (named IndexObject to
// avoid colliding with the package name).
func (idx *Index) IndexObject(name string) (Object, bool) {
	return idx.lookup(name, ObjectIndex)
}

func (idx *Index) lookup(name string, want ObjectType) (Object, bool) {
	v, ok := idx.byName.Get(name)
	if !ok {
		return Object{}, false
	}
	obj := v.(Object)
	if obj.Type != want {
		return Object{}, false
	}
	return obj, true
}

// AutoIndexName returns the conventional name SQLite assigns to the
// automatically generated unique-constraint index on the N-th unique
// column of table: sqlite_autoindex_<table>_<N>.
func AutoIndexName(table string, n int) string {
	return fmt.Sprintf("sqlite_autoindex_%s_%d", table, n)
}

// AutoIndexFor resolves the automatic unique index for table's N-th
// unique column.
func (idx *Index) AutoIndexFor(table string, n int) (Object, bool) {
	return idx.IndexObject(AutoIndexName(table, n))
}

// Walk visits every indexed object in lexicographic name order, for
// diagnostics and testing.
func (idx *Index) Walk(fn func(Object)) {
	idx.byName.Walk(func(_ string, v interface{}) bool {
		fn(v.(Object))
		return false
	})
}
