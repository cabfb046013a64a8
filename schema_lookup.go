package litedb

import (
	"fmt"

	"github.com/joeandaverde/litedb/internal/schema"
	"github.com/joeandaverde/litedb/internal/storage"
)

// Table resolves a table's schema object by name, for callers that would
// rather pass a name than track a root page number themselves.
func (e *Engine) Table(name string) (schema.Object, bool) {
	return e.schema.Table(name)
}

// Index resolves an index's schema object by name.
func (e *Engine) Index(name string) (schema.Object, bool) {
	return e.schema.IndexObject(name)
}

// AutoIndexFor resolves the automatically generated unique index on
// table's N-th unique column (see schema.AutoIndexName).
func (e *Engine) AutoIndexFor(table string, columnOrdinal int) (schema.Object, bool) {
	return e.schema.AutoIndexFor(table, columnOrdinal)
}

// FindByIndexName performs an index lookup by index name rather than raw
// root page numbers, resolving both the index's and its owning table's
// root pages through the schema index.
func (e *Engine) FindByIndexName(indexName string, key ...storage.Value) (storage.Record, error) {
	idxObj, ok := e.Index(indexName)
	if !ok {
		return storage.Record{}, fmt.Errorf("litedb: no index named %q", indexName)
	}

	tableObj, ok := e.Table(idxObj.TblName)
	if !ok {
		return storage.Record{}, fmt.Errorf("litedb: index %q references unknown table %q", indexName, idxObj.TblName)
	}

	return e.FindInIndex(idxObj.RootPage, key, tableObj.RootPage)
}
