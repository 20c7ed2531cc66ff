package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{"PORT", "DB_PATH", "LOG_LEVEL", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, env[k])
	}
}

func TestRun_ReturnsConfigError(t *testing.T) {
	setEnv(t, map[string]string{"PORT": "not-a-port"})

	err := run("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestRun_ReturnsDatabaseDirectoryError(t *testing.T) {
	// A regular file where a directory is expected makes MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	setEnv(t, map[string]string{
		"LOG_LEVEL": "error",
		"DB_PATH":   filepath.Join(blocker, "data", "accountkit.db"),
	})

	err := run("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating database directory")
}
