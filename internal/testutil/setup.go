// Package testutil provides shared fixtures for tests that need a config
// document on disk: write a sample, load it back, generate documents at
// size. Packages below config in the import graph keep local helpers
// instead, since this package imports config.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/internal/paths"
)

// WriteDoc writes a document into a fresh temp dir under the standard
// file name and returns its path.
func WriteDoc(t *testing.T, doc string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), paths.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644), "failed to write test document")
	return path
}

// SeedDoc writes a document and loads it back, the common starting point
// for transaction and bulk tests.
func SeedDoc(t *testing.T, docJSON string) (string, *config.Document) {
	t.Helper()

	path := WriteDoc(t, docJSON)
	return path, Reload(t, path)
}

// Reload parses the document currently on disk.
func Reload(t *testing.T, path string) *config.Document {
	t.Helper()

	doc, err := config.Load(path)
	require.NoError(t, err, "failed to load test document: %s", path)
	return doc
}

// GenDoc builds a document with n generated entries, declared in
// GenName order, for selector and parallelism tests.
func GenDoc(n int) string {
	var b strings.Builder
	b.WriteString("{\n  \"mcpServers\": {\n")
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %q: {\"command\": \"npx\", \"args\": [\"-y\", \"svc\"]}", GenName(i))
	}
	b.WriteString("\n  }\n}\n")
	return b.String()
}

// GenName returns the name of the i-th generated entry.
func GenName(i int) string {
	return fmt.Sprintf("svc-%02d", i)
}
