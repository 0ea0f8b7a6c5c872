package sqlext

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryRow struct {
	Ordinal int64
	Name    string
	Value   string
}

func requireModule(t *testing.T) {
	t.Helper()
	if !ModuleAvailable {
		t.Skip("go-sqlite3 built without sqlite_vtable tag")
	}
}

func TestQueryEach(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	rows, err := db.Query(`SELECT ordinal, name, value FROM url_query_each(?)`, "a=b&c=d&a=e")
	require.NoError(t, err)
	defer rows.Close()

	var got []queryRow
	for rows.Next() {
		var r queryRow
		require.NoError(t, rows.Scan(&r.Ordinal, &r.Name, &r.Value))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []queryRow{{0, "a", "b"}, {1, "c", "d"}, {2, "a", "e"}}, got)
}

func TestQueryEach_RowidIsOrdinal(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	var mismatches int
	require.NoError(t, db.QueryRow(
		`SELECT count(*) FROM url_query_each('x=1&y=2&z=3') WHERE rowid != ordinal`,
	).Scan(&mismatches))
	assert.Zero(t, mismatches)
}

func TestQueryEach_EmptyAndNull(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM url_query_each('')`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM url_query_each(NULL)`).Scan(&n))
	assert.Zero(t, n)
}

func TestQueryEach_MissingArgument(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	var n int
	err := db.QueryRow(`SELECT count(*) FROM url_query_each`).Scan(&n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required query argument")
}

func TestQueryEach_ComposesWithURLQuery(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	var value string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM url_query_each(url_query('https://example.com/?q=hello+world&page=2')) WHERE name = 'q'`,
	).Scan(&value))
	assert.Equal(t, "hello world", value)
}

func TestQueryEach_LateralJoin(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	_, err := db.Exec(`CREATE TABLE requests(id INTEGER PRIMARY KEY, u TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO requests(u) VALUES ('https://a/?x=1&y=2'), ('https://b/?z=3')`)
	require.NoError(t, err)

	rows, err := db.Query(`
		SELECT r.id, q.name, q.value
		FROM requests r, url_query_each(url_query(r.u)) q
		ORDER BY r.id, q.ordinal`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id int
		var name, value string
		require.NoError(t, rows.Scan(&id, &name, &value))
		got = append(got, name+"="+value)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"x=1", "y=2", "z=3"}, got)
}

type lineRow struct {
	Rowid     int64
	Delimiter string
	Document  string
	Line      string
}

func TestLines(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	rows, err := db.Query(`SELECT rowid, delimiter, document, line FROM lines(?)`, "a\nb")
	require.NoError(t, err)
	defer rows.Close()

	var got []lineRow
	for rows.Next() {
		var r lineRow
		require.NoError(t, rows.Scan(&r.Rowid, &r.Delimiter, &r.Document, &r.Line))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []lineRow{{1, "\n", "", "a"}, {2, "\n", "", "b"}}, got)
}

func TestLines_CustomDelimiter(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	var joined string
	require.NoError(t, db.QueryRow(
		`SELECT group_concat(line, '+') FROM (SELECT line FROM lines('x,y,z', ',') ORDER BY rowid)`,
	).Scan(&joined))
	assert.Equal(t, "x+y+z", joined)

	err := db.QueryRow(`SELECT count(*) FROM lines('axxb', 'xx')`).Scan(new(int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter must be exactly one character")
}

func TestLinesRead(t *testing.T) {
	requireModule(t)
	db := openDB(t)

	path := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline numba 2\nline 3 baby\n"), 0o600))

	rows, err := db.Query(`SELECT rowid, path, delimiter, line FROM lines_read(?)`, path)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var rowid int64
		var p, delim, line string
		require.NoError(t, rows.Scan(&rowid, &p, &delim, &line))
		assert.Equal(t, path, p)
		assert.Equal(t, "\n", delim)
		got = append(got, fmt.Sprintf("%d:%s", rowid, line))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"1:line1", "2:line numba 2", "3:line 3 baby"}, got)

	err = db.QueryRow(`SELECT count(*) FROM lines_read(?)`, filepath.Join(t.TempDir(), "notexist.txt")).Scan(new(int))
	require.Error(t, err)
}
