package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/types"
)

func resetAddFlags() {
	addCommand = ""
	addArgs = nil
	addEnv = nil
	addTemplate = ""
	addVars = nil
	addDryRun = false
	addYes = false
	addNoBackup = false
	addOffline = false
}

func TestAddCommand(t *testing.T) {
	tests := []struct {
		name           string
		entry          string
		command        string
		args           []string
		env            []string
		dryRun         bool
		wantErr        bool
		wantExists     bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:    "dry run previews with masked env",
			entry:   "search",
			command: "npx",
			args:    []string{"server-search"},
			env:     []string{"SEARCH_API_KEY=supersecretvalue123"},
			dryRun:  true,
			wantContain: []string{
				"+ search",
				"command: npx",
				"args: server-search",
				"env.SEARCH_API_KEY=sup",
				"Dry run: nothing written.",
			},
			wantNotContain: []string{"supersecretvalue123"},
		},
		{
			name:        "applies with yes",
			entry:       "sqlite",
			command:     "uvx",
			args:        []string{"mcp-server-sqlite"},
			wantContain: []string{`✓ Added "sqlite"`},
		},
		{
			name:       "existing name is rejected",
			entry:      "github",
			command:    "npx",
			wantErr:    true,
			wantExists: true,
		},
		{
			name:    "requires command or template",
			entry:   "incomplete",
			wantErr: true,
		},
		{
			name:    "bad env assignment",
			entry:   "broken",
			command: "npx",
			env:     []string{"NOEQUALS"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testConfigPath(t, "")
			resetAddFlags()
			addCommand = tt.command
			addArgs = tt.args
			addEnv = tt.env
			addDryRun = tt.dryRun
			addYes = true

			before, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read config: %v", err)
			}

			output, err := captureOutput(t, func() error {
				return runAdd([]string{tt.entry})
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runAdd() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if tt.wantExists && !types.IsKind(err, types.ErrKindExists) {
					t.Errorf("expected an already-exists error, got %v", err)
				}
				return
			}

			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)

			after, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read config: %v", err)
			}
			if tt.dryRun {
				if string(before) != string(after) {
					t.Error("dry run modified the document")
				}
				if _, err := os.Stat(filepath.Join(filepath.Dir(path), paths.BackupDirName)); !os.IsNotExist(err) {
					t.Error("dry run created the backup directory")
				}
			} else {
				if string(before) == string(after) {
					t.Error("document was not modified")
				}
			}
		})
	}
}

func TestAddRejectsTemplateWithCommand(t *testing.T) {
	testConfigPath(t, "")
	resetAddFlags()
	addCommand = "npx"
	addTemplate = "github"

	_, err := captureOutput(t, func() error {
		return runAdd([]string{"conflicting"})
	})
	if err == nil {
		t.Fatal("expected an error for --template with --command")
	}
}

func TestAddFromBuiltinTemplate(t *testing.T) {
	t.Setenv(paths.EnvConfigDir, t.TempDir())
	path := testConfigPath(t, "")
	resetAddFlags()
	addTemplate = "sqlite"
	addVars = []string{"db_path=/tmp/app.db"}
	addOffline = true
	addYes = true

	output, err := captureOutput(t, func() error {
		return runAdd([]string{"sqlite"})
	})
	if err != nil {
		t.Fatalf("runAdd() error = %v", err)
	}
	assertContains(t, output, []string{`✓ Added "sqlite"`, "+ sqlite", "command: uvx", "/tmp/app.db"})

	doc, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	assertContains(t, string(doc), []string{`"sqlite"`, `"uvx"`})
}
