package litedb

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/joeandaverde/litedb/internal/fixture"
	"github.com/joeandaverde/litedb/internal/storage"
)

type EngineTestSuite struct {
	suite.Suite
	dbPath string
	rows   []fixture.User
	engine *Engine
}

func (s *EngineTestSuite) SetupTest() {
	dir := s.T().TempDir()
	path, rows, err := fixture.BuildUsersDB(fixture.Options{Dir: dir, RowCount: 1000})
	s.Require().NoError(err)

	s.dbPath = path
	s.rows = rows

	engine, err := Open(path, nil)
	s.Require().NoError(err)
	s.engine = engine
}

func (s *EngineTestSuite) TearDownTest() {
	s.Require().NoError(s.engine.Close())
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) TestSchemaRecords_ListsUsersTableAndIndexes() {
	records, err := s.engine.SchemaRecords()
	s.Require().NoError(err)
	s.NotEmpty(records)

	table, ok := s.engine.Table("users")
	s.True(ok)
	s.Equal("users", table.Name)
	s.Greater(table.RootPage, 0)
}

func (s *EngineTestSuite) TestFindInTable_ExactRowID() {
	table, ok := s.engine.Table("users")
	s.Require().True(ok)

	want := s.rows[499]
	rec, err := s.engine.FindInTable(table.RootPage, want.ID)
	s.Require().NoError(err)

	// Columns: id (rowid alias, stored as NULL), username, email.
	username := rec.Values[1]
	s.Equal(storage.KindText, username.Kind)
	s.Equal(want.Username, string(username.Bytes))
}

func (s *EngineTestSuite) TestFindInTable_MissingRowID() {
	table, ok := s.engine.Table("users")
	s.Require().True(ok)

	_, err := s.engine.FindInTable(table.RootPage, int64(len(s.rows)+1000))
	s.Error(err)
}

func (s *EngineTestSuite) TestFindByIndexName_UniqueUsername() {
	want := s.rows[7]

	rec, err := s.engine.FindByIndexName(
		"sqlite_autoindex_users_1",
		storage.Value{Kind: storage.KindText, Bytes: []byte(want.Username)},
	)
	s.Require().NoError(err)
	s.Equal(storage.KindText, rec.Values[2].Kind)
	s.Equal(want.Email, string(rec.Values[2].Bytes))
}

func (s *EngineTestSuite) TestFindByIndexName_NotFoundForUnknownValue() {
	_, err := s.engine.FindByIndexName(
		"sqlite_autoindex_users_1",
		storage.Value{Kind: storage.KindText, Bytes: []byte("does-not-exist")},
	)
	s.Error(err)
}

func (s *EngineTestSuite) TestFindByIndexName_UnknownIndexName() {
	_, err := s.engine.FindByIndexName("sqlite_autoindex_users_99")
	s.Error(err)
}
