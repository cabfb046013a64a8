package pager

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/litedb/internal/storage"
)

// writeFixtureFile builds a two-page database file: page 1 is an empty
// table-leaf page (with the 100-byte file header prefixed), page 2 is
// another empty table-leaf page.
func writeFixtureFile(t *testing.T, pageSize int) string {
	t.Helper()

	buf := make([]byte, pageSize*2)
	copy(buf[0:16], "SQLite format 3\x00")
	binary.BigEndian.PutUint16(buf[16:18], uint16(pageSize))
	buf[18], buf[19] = 4, 4
	binary.BigEndian.PutUint32(buf[56:60], uint32(storage.EncodingUTF8))

	page1Header := storage.FileHeaderSize
	buf[page1Header] = byte(storage.PageTypeTableLeaf)
	binary.BigEndian.PutUint16(buf[page1Header+5:page1Header+7], uint16(pageSize))

	buf[pageSize] = byte(storage.PageTypeTableLeaf)
	binary.BigEndian.PutUint16(buf[pageSize+5:pageSize+7], uint16(pageSize))

	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.db")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestPager_ReadPage1(t *testing.T) {
	r := require.New(t)

	path := writeFixtureFile(t, 512)
	p, err := Open(path, nil, false)
	r.NoError(err)
	defer p.Close()

	r.Equal(512, p.PageSize())
	r.Equal(storage.EncodingUTF8, p.Header().TextEncoding)

	page, err := p.Read(1)
	r.NoError(err)
	r.Equal(storage.FileHeaderSize, page.HeaderOffset)
	r.Equal(storage.PageTypeTableLeaf, page.Header.Type)
}

func TestPager_ReadPage2(t *testing.T) {
	r := require.New(t)

	path := writeFixtureFile(t, 512)
	p, err := Open(path, nil, false)
	r.NoError(err)
	defer p.Close()

	page, err := p.Read(2)
	r.NoError(err)
	r.Equal(0, page.HeaderOffset)
	r.Equal(2, page.Number)
}

func TestPager_OutOfBoundsPage(t *testing.T) {
	r := require.New(t)

	path := writeFixtureFile(t, 512)
	p, err := Open(path, nil, false)
	r.NoError(err)
	defer p.Close()

	_, err = p.Read(0)
	r.Error(err)
}

func TestPager_CachingReturnsSameInstance(t *testing.T) {
	r := require.New(t)

	path := writeFixtureFile(t, 512)
	p, err := Open(path, nil, true)
	r.NoError(err)
	defer p.Close()

	a, err := p.Read(2)
	r.NoError(err)
	b, err := p.Read(2)
	r.NoError(err)
	r.Same(a, b)
}

func TestPager_BadMagicRejected(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.db")
	require.NoError(t, os.WriteFile(path, make([]byte, 200), 0o644))

	_, err := Open(path, nil, false)
	r.ErrorIs(err, storage.ErrBadMagic)
}
