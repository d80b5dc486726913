package main

import (
	"os"
	"testing"

	"github.com/joshuapare/mcpkit/config"
)

func resetRemoveFlags() {
	removeDryRun = false
	removeYes = false
	removeNoBackup = false
	removeKeepGoing = false
	removeParallel = 0
}

func TestRemoveCommand(t *testing.T) {
	tests := []struct {
		name        string
		selector    string
		dryRun      bool
		wantContain []string
		wantGone    []string
		wantKept    []string
	}{
		{
			name:        "glob removes every match",
			selector:    "api-*",
			wantContain: []string{"- api-east", "- api-west", "✓ api-east", "✓ api-west", "2 applied, 0 failed, 0 skipped"},
			wantGone:    []string{"api-east", "api-west"},
			wantKept:    []string{"github"},
		},
		{
			name:        "exact name",
			selector:    "github",
			wantContain: []string{"- github", "1 applied, 0 failed, 0 skipped"},
			wantGone:    []string{"github"},
			wantKept:    []string{"api-east", "api-west"},
		},
		{
			name:        "no match is a warning",
			selector:    "db-*",
			wantContain: []string{`No servers match "db-*".`},
			wantKept:    []string{"github", "api-east", "api-west"},
		},
		{
			name:        "dry run writes nothing",
			selector:    "api-*",
			dryRun:      true,
			wantContain: []string{"- api-east", "- api-west", "Dry run: nothing written."},
			wantKept:    []string{"github", "api-east", "api-west"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testConfigPath(t, "")
			resetRemoveFlags()
			removeDryRun = tt.dryRun
			removeYes = true

			before, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read config: %v", err)
			}

			output, err := captureOutput(t, func() error {
				return runRemove([]string{tt.selector})
			})
			if err != nil {
				t.Fatalf("runRemove() error = %v", err)
			}

			assertContains(t, output, tt.wantContain)

			doc, err := config.Load(path)
			if err != nil {
				t.Fatalf("load config: %v", err)
			}
			for _, name := range tt.wantGone {
				if doc.Has(name) {
					t.Errorf("entry %q should have been removed", name)
				}
			}
			for _, name := range tt.wantKept {
				if !doc.Has(name) {
					t.Errorf("entry %q should have been kept", name)
				}
			}

			if tt.dryRun || len(tt.wantGone) == 0 {
				after, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("read config: %v", err)
				}
				if string(before) != string(after) {
					t.Error("document bytes changed without an applied removal")
				}
			}
		})
	}
}
