package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/config"
)

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "import.db")
	catalog := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`[
  {"title": "1984", "author": "George Orwell", "copies": 2, "category": "Fiction"},
  {"title": "The Art of War", "author": "Sun Tzu", "copies": 1, "category": "History"}
]`), 0o644))

	t.Setenv("LIBRARY_DB_DRIVER", "sqlite3")
	t.Setenv("LIBRARY_DB_DSN", dbPath)

	var out bytes.Buffer
	importCmd.SetOut(&out)
	importCmd.SetArgs([]string{"--env-file", "", "--reset", catalog})

	require.NoError(t, importCmd.Execute())
	assert.Contains(t, out.String(), "Imported 2 books")
	assert.Contains(t, out.String(), "George Orwell")
	assert.FileExists(t, dbPath)
}

func TestRemoveSQLiteFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DBDSN = filepath.Join(dir, "old.db")
	for _, suffix := range []string{"", "-wal"} {
		require.NoError(t, os.WriteFile(cfg.DBDSN+suffix, nil, 0o644))
	}

	require.NoError(t, removeSQLiteFiles(cfg))
	assert.NoFileExists(t, cfg.DBDSN)
	assert.NoFileExists(t, cfg.DBDSN+"-wal")

	cfg.DBDriver = "postgres"
	assert.Error(t, removeSQLiteFiles(cfg))
}
