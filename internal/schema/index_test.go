package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/litedb/internal/storage"
)

func textValue(s string) storage.Value {
	return storage.Value{Kind: storage.KindText, Bytes: []byte(s)}
}

func TestBuild_TableAndIndexLookup(t *testing.T) {
	r := require.New(t)

	records := []storage.Record{
		{Values: []storage.Value{
			textValue("table"), textValue("users"), textValue("users"),
			{Kind: storage.KindInt, Int: 2}, textValue("CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE)"),
		}},
		{Values: []storage.Value{
			textValue("index"), textValue("sqlite_autoindex_users_1"), textValue("users"),
			{Kind: storage.KindInt, Int: 3}, {Kind: storage.KindNull},
		}},
	}

	idx, err := Build(records)
	r.NoError(err)

	table, ok := idx.Table("users")
	r.True(ok)
	r.Equal(2, table.RootPage)

	autoIdx, ok := idx.AutoIndexFor("users", 1)
	r.True(ok)
	r.Equal(3, autoIdx.RootPage)

	_, ok = idx.Table("missing")
	r.False(ok)

	// Asking for an index object under Table() should miss, even though
	// the name resolves.
	_, ok = idx.Table("sqlite_autoindex_users_1")
	r.False(ok)
}
