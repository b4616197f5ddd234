package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-service/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	out, err := execute(t, "migrate", "--env-file", "", "--db-driver", "sqlite3", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date (sqlite3)")
	assert.FileExists(t, path)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("LIBRARY_JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--env-file", "", "--email", "admin@example.com", "--admin")
	require.NoError(t, err)

	v, err := auth.NewVerifier(auth.Config{Secret: "cli-secret"})
	require.NoError(t, err)
	claims, err := v.Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.UserEmail())
	assert.True(t, claims.IsAdmin())
}

func TestServeRequiresSigningKey(t *testing.T) {
	t.Setenv("LIBRARY_JWT_SECRET", "")
	_, err := execute(t, "serve", "--env-file", "", "--db", filepath.Join(t.TempDir(), "serve.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIBRARY_JWT_SECRET")
}
