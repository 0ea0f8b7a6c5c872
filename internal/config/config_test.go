package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqliteurl/internal/store"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, store.DriverCGO, cfg.StoreDriver())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	body := "db: links.db\ndriver: sqlite\nformat: json\ntest:\n  paths: [scenarios, more]\n  filter: 'query_*'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqliteurl.yaml"), []byte(body), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "links.db", cfg.DB)
	assert.Equal(t, store.DriverPure, cfg.StoreDriver())
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"scenarios", "more"}, cfg.Test.Paths)
	assert.Equal(t, "query_*", cfg.Test.Filter)
}

func TestLoad_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	file := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"format": "json", "verbose": true}`), 0o644))

	cfg, err := Load(file, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, ":memory:", cfg.DB)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqliteurl.yaml"), []byte("db: file.db\nformat: json\n"), 0o644))

	t.Setenv("SQLITEURL_DB", "env.db")
	t.Setenv("SQLITEURL_VERBOSE", "true")
	t.Setenv("SQLITEURL_TEST_FILTER", "builder")
	t.Setenv("SQLITEURL_TEST_PATHS", "a"+string(os.PathListSeparator)+"b")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "builder", cfg.Test.Filter)
	assert.Equal(t, []string{"a", "b"}, cfg.Test.Paths)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SQLITEURL_DB", "env.db")
	t.Setenv("SQLITEURL_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", ":memory:", "")
	flags.String("format", "text", "")
	flags.String("driver", "sqlite3", "")
	require.NoError(t, flags.Parse([]string{"--db", "flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DB)
	assert.Equal(t, "json", cfg.Format, "unchanged flag must not mask env")
	assert.Equal(t, "sqlite3", cfg.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SQLITEURL_FORMAT", "xml")
	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)

	t.Setenv("SQLITEURL_FORMAT", "text")
	t.Setenv("SQLITEURL_DRIVER", "postgres")
	_, err = Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.DB = ""
	assert.EqualError(t, cfg.Validate(), "db must not be empty")
}
