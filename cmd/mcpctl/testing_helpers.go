package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDoc = `{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "ghp_abcdef1234567890"}
    },
    "api-east": {
      "command": "npx",
      "args": ["-y", "server-api", "--region", "east"]
    },
    "api-west": {
      "command": "npx",
      "args": ["-y", "server-api", "--region", "west"]
    }
  }
}`

// testConfigPath writes doc (or the standard sample when empty) into a
// temp dir, resets the persistent flags, and points --config at the file.
func testConfigPath(t *testing.T, doc string) string {
	t.Helper()
	if doc == "" {
		doc = testDoc
	}
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	resetGlobalFlags()
	configFlag = path
	return path
}

// resetGlobalFlags returns the persistent flags to their defaults. Color
// stays off so assertions see plain strings.
func resetGlobalFlags() {
	configFlag = ""
	profileFlag = ""
	verbose = false
	quiet = false
	jsonOut = false
	noColor = true
	debugMode = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
