package acceptance

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/backup"
	"github.com/joshuapare/mcpkit/internal/paths"
)

// sampleConfig is a realistic desktop document: four entries in a fixed
// declaration order, one secret-bearing env var, and two top-level fields
// that no entry operation is allowed to touch.
const sampleConfig = `{
  "globalShortcut": "Alt+Space",
  "theme": "dark",
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "ghp_secret9876543210"}
    },
    "files": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-filesystem", "/srv/data"]
    },
    "db-staging": {
      "command": "uvx",
      "args": ["mcp-server-postgres", "--dsn", "postgres://localhost/staging"]
    },
    "db-prod": {
      "command": "uvx",
      "args": ["mcp-server-postgres", "--dsn", "postgres://localhost/prod"]
    }
  }
}`

// The raw token in sampleConfig and the form previews must render it in.
const (
	rawToken    = "ghp_secret9876543210"
	maskedToken = "ghp**************210"
)

// writeConfig places the sample document in a fresh temp dir and returns
// its path.
func writeConfig(t *testing.T) string {
	t.Helper()
	return writeConfigData(t, sampleConfig)
}

// writeConfigData writes an arbitrary document into a fresh temp dir.
func writeConfigData(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), paths.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644), "failed to seed config document")
	return path
}

// readConfig returns the raw on-disk bytes of the document.
func readConfig(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read config document: %s", path)
	return data
}

// hashConfig fingerprints the on-disk document for before/after
// comparisons.
func hashConfig(t *testing.T, path string) [sha256.Size]byte {
	t.Helper()
	return sha256.Sum256(readConfig(t, path))
}

// mustLoad parses the on-disk document.
func mustLoad(t *testing.T, path string) *config.Document {
	t.Helper()

	doc, err := config.Load(path)
	require.NoError(t, err, "failed to load config document: %s", path)
	return doc
}

// backupDir returns the default snapshot directory for a document path,
// the one write operations use when no override is given.
func backupDir(path string) string {
	return filepath.Join(filepath.Dir(path), paths.BackupDirName)
}

// listSnapshots returns the snapshots next to the document, newest first.
func listSnapshots(t *testing.T, path string) []backup.Entry {
	t.Helper()

	snaps, err := backup.NewStore(backupDir(path)).List()
	require.NoError(t, err, "failed to list snapshots")
	return snaps
}

// loadSnapshot parses the document preserved inside a snapshot.
func loadSnapshot(t *testing.T, path string, e backup.Entry) *config.Document {
	t.Helper()

	doc, err := backup.NewStore(backupDir(path)).Load(e)
	require.NoError(t, err, "failed to load snapshot %s", e.Metadata.Name)
	return doc
}
