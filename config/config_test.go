package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "sqlite3", c.DBDriver)
	assert.Equal(t, "http://localhost:3000", c.CORSOrigin)
	assert.Equal(t, 7, c.Policy().LoanPeriodDays)
	assert.Equal(t, 5, c.Policy().MaxLoans)
}

func TestLoadEnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LIBRARY_DB_DRIVER=postgres\nLIBRARY_LOAN_DAYS=14\nLIBRARY_JWT_SECRET=from-file\n"), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("LIBRARY_JWT_SECRET", "from-env")
	t.Setenv("LIBRARY_LATE_FEE", "0.5")
	t.Setenv("LIBRARY_LOG_FORMAT", "json")
	// Registered so the values loaded from the file are cleared after the test.
	t.Setenv("LIBRARY_DB_DRIVER", "")
	t.Setenv("LIBRARY_LOAN_DAYS", "")
	os.Unsetenv("LIBRARY_DB_DRIVER")
	os.Unsetenv("LIBRARY_LOAN_DAYS")

	c, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, 14, c.LoanPeriodDays)
	assert.Equal(t, 0.5, c.LateFeePerDay)
	assert.Equal(t, "from-env", c.JWTSecret)

	log := c.Logger()
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, val := range map[string]string{
		"LIBRARY_MAX_LOANS":  "many",
		"LIBRARY_LATE_FEE":   "-1",
		"LIBRARY_LOAN_DAYS":  "0",
		"LIBRARY_LOG_LEVEL":  "chatty",
		"LIBRARY_LOG_FORMAT": "xml",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestAuthConfig(t *testing.T) {
	c := Default()
	_, err := c.Auth()
	assert.Error(t, err)

	c.JWTSecret = "s"
	ac, err := c.Auth()
	require.NoError(t, err)
	assert.Equal(t, "s", ac.Secret)

	pemFile := filepath.Join(t.TempDir(), "pub.pem")
	require.NoError(t, os.WriteFile(pemFile, []byte("-----BEGIN PUBLIC KEY-----"), 0o600))
	c = Default()
	c.JWTPublicKeyFile = pemFile
	ac, err = c.Auth()
	require.NoError(t, err)
	assert.Contains(t, ac.PublicKeyPEM, "PUBLIC KEY")

	c.JWTPublicKeyFile = filepath.Join(t.TempDir(), "absent.pem")
	_, err = c.Auth()
	assert.Error(t, err)
}
