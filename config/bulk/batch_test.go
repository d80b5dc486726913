package bulk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/pkg/types"
)

func writeBatch(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadBatchFileYAML verifies the YAML batch format.
func TestLoadBatchFileYAML(t *testing.T) {
	path := writeBatch(t, "batch.yaml", `
servers:
  - name: github
    template: github
    vars:
      token: abcdef1234567890
  - name: files
    template: filesystem
    vars:
      path: /tmp
`)
	bf, err := LoadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, bf.Servers, 2)
	assert.Equal(t, "github", bf.Servers[0].Name)
	assert.Equal(t, "abcdef1234567890", bf.Servers[0].Vars["token"])
	assert.Equal(t, "filesystem", bf.Servers[1].Template)
}

// TestLoadBatchFileJSON verifies the JSON batch format.
func TestLoadBatchFileJSON(t *testing.T) {
	path := writeBatch(t, "batch.json",
		`{"servers": [{"name": "db", "template": "sqlite", "vars": {"db_path": "/tmp/db"}}]}`)
	bf, err := LoadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, bf.Servers, 1)
	assert.Equal(t, "sqlite", bf.Servers[0].Template)
}

// TestLoadBatchFileNoExtension verifies the JSON-then-YAML fallback for
// unknown extensions.
func TestLoadBatchFileNoExtension(t *testing.T) {
	jsonPath := writeBatch(t, "batch",
		`{"servers": [{"name": "a", "template": "t"}]}`)
	bf, err := LoadBatchFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, bf.Servers, 1)

	yamlPath := writeBatch(t, "batch.txt", "servers:\n  - name: b\n    template: t\n")
	bf, err = LoadBatchFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, bf.Servers, 1)
	assert.Equal(t, "b", bf.Servers[0].Name)
}

// TestLoadBatchFileErrors verifies the error kinds per failure mode.
func TestLoadBatchFileErrors(t *testing.T) {
	_, err := LoadBatchFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindIo))

	garbled := writeBatch(t, "bad.json", `{]`)
	_, err = LoadBatchFile(garbled)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindFormat))

	noName := writeBatch(t, "noname.yaml", "servers:\n  - template: t\n")
	_, err = LoadBatchFile(noName)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindValidation))

	noForm := writeBatch(t, "noform.yaml", "servers:\n  - name: a\n")
	_, err = LoadBatchFile(noForm)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindValidation))

	bothForms := writeBatch(t, "both.yaml",
		"servers:\n  - name: a\n    template: t\n    command: npx\n")
	_, err = LoadBatchFile(bothForms)
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindValidation))
}

// TestLoadBatchFileLiteral verifies the direct command form.
func TestLoadBatchFileLiteral(t *testing.T) {
	path := writeBatch(t, "literal.yaml", `
servers:
  - name: echo
    command: /bin/echo
    args: ["hello"]
    env:
      GREETING: hi
`)
	bf, err := LoadBatchFile(path)
	require.NoError(t, err)
	require.Len(t, bf.Servers, 1)
	assert.True(t, bf.Servers[0].Literal())
	assert.Equal(t, "/bin/echo", bf.Servers[0].Command)
	assert.Equal(t, []string{"hello"}, bf.Servers[0].Args)
	assert.Equal(t, "hi", bf.Servers[0].Env["GREETING"])
}

// TestParseEnvAssignments verifies KEY=VALUE parsing.
func TestParseEnvAssignments(t *testing.T) {
	got, err := ParseEnvAssignments([]string{"DEBUG=true", "URL=http://x/?a=b", "EMPTY="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"DEBUG": "true",
		"URL":   "http://x/?a=b",
		"EMPTY": "",
	}, got)

	for _, bad := range []string{"NOVALUE", "=value"} {
		_, err := ParseEnvAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}
