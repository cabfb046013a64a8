// Package litedb is a read-only decoder for SQLite format 3 database
// files: file header, page parser, record decoder, and B-tree search by
// row id or index tuple, with no write path and no SQL layer.
package litedb

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/joeandaverde/litedb/internal/btree"
	"github.com/joeandaverde/litedb/internal/pager"
	"github.com/joeandaverde/litedb/internal/schema"
	"github.com/joeandaverde/litedb/internal/storage"
)

// Engine is an opened database file: its file header, page 1's schema,
// and everything needed to search any of its tables or indexes.
type Engine struct {
	log    *log.Logger
	config *Config
	pager  *pager.Pager
	schema *schema.Index
}

// Open reads the file header, eagerly parses page 1, and builds the
// schema index described in §11.1. A nil config resolves to documented
// defaults.
func Open(path string, config *Config) (*Engine, error) {
	cfg := resolveConfig(config)

	logger := log.New()
	logger.SetLevel(cfg.LogLevel)

	requestID := uuid.New().String()
	entry := logger.WithFields(log.Fields{"op": "Open", "request_id": requestID})
	entry.Info("litedb: opening database file")

	p, err := pager.Open(path, logger, cfg.CacheEnabled)
	if err != nil {
		entry.WithError(err).Error("litedb: open failed")
		return nil, err
	}

	page1, err := p.Read(1)
	if err != nil {
		p.Close()
		return nil, err
	}

	schemaRecords, err := decodeSchemaPage(page1, p.Header().TextEncoding)
	if err != nil {
		p.Close()
		return nil, err
	}

	idx, err := schema.Build(schemaRecords)
	if err != nil {
		p.Close()
		return nil, err
	}

	entry.WithField("objects", len(schemaRecords)).Debug("litedb: schema index built")

	return &Engine{
		log:    logger,
		config: cfg,
		pager:  p,
		schema: idx,
	}, nil
}

// Close releases the underlying file handle.
func (e *Engine) Close() error {
	return e.pager.Close()
}

// decodeSchemaPage parses every cell of the sqlite_schema table-leaf page
// (always page 1) into records.
func decodeSchemaPage(page *storage.Page, encoding storage.TextEncoding) ([]storage.Record, error) {
	if page.Header.Type != storage.PageTypeTableLeaf {
		return nil, fmt.Errorf("litedb: page 1 has unexpected type %s", page.Header.Type)
	}

	records := make([]storage.Record, 0, page.CellCount())
	for i := 0; i < page.CellCount(); i++ {
		cell, err := page.TableLeafCell(i)
		if err != nil {
			return nil, err
		}
		rec, err := storage.ParseRecord(cell.Payload, encoding)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// SchemaRecords returns page 1's rows: the type/name/tbl_name/rootpage/sql
// tuples for every table, index, trigger, and view in the file.
func (e *Engine) SchemaRecords() ([]storage.Record, error) {
	requestID := uuid.New().String()
	e.log.WithFields(log.Fields{"op": "SchemaRecords", "request_id": requestID}).Debug("litedb: schema records requested")

	page1, err := e.pager.Read(1)
	if err != nil {
		return nil, err
	}
	return decodeSchemaPage(page1, e.pager.Header().TextEncoding)
}

// FindInTable performs a primary-key lookup in the table b-tree rooted at
// rootPage, returning the matching record or btree.ErrNotFound.
func (e *Engine) FindInTable(rootPage int, rowID int64) (storage.Record, error) {
	requestID := uuid.New().String()
	entry := e.log.WithFields(log.Fields{"op": "FindInTable", "request_id": requestID, "root_page": rootPage, "row_id": rowID})
	entry.Trace("litedb: table lookup")

	rec, err := btree.SearchRowID(e.pager, rootPage, rowID, e.pager.Header().TextEncoding)
	if err != nil {
		entry.WithError(err).Debug("litedb: table lookup failed")
		return storage.Record{}, err
	}
	return rec, nil
}

// FindInIndex performs an index lookup in the index b-tree rooted at
// rootPage for the given key tuple, then follows the embedded row id into
// tableRootPage to return the base table row. A row id present in the
// index but absent from the table is reported as ErrDanglingIndex.
func (e *Engine) FindInIndex(rootPage int, key []storage.Value, tableRootPage int) (storage.Record, error) {
	requestID := uuid.New().String()
	entry := e.log.WithFields(log.Fields{"op": "FindInIndex", "request_id": requestID, "root_page": rootPage})
	entry.Trace("litedb: index lookup")

	encoding := e.pager.Header().TextEncoding

	result, err := btree.SearchIndex(e.pager, rootPage, key, encoding)
	if err != nil {
		entry.WithError(err).Debug("litedb: index lookup failed")
		return storage.Record{}, err
	}

	rec, err := btree.SearchRowID(e.pager, tableRootPage, result.RowID, encoding)
	if err != nil {
		if errors.Is(err, btree.ErrNotFound) {
			return storage.Record{}, fmt.Errorf("%w: row id %d", ErrDanglingIndex, result.RowID)
		}
		return storage.Record{}, err
	}
	return rec, nil
}
