package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// profileTestDir points the config directory override at a temp dir
// holding the live document, so profile state never leaves the test.
func profileTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.EnvConfigDir, dir)
	if err := os.WriteFile(filepath.Join(dir, paths.ConfigFileName), []byte(testDoc), 0o644); err != nil {
		t.Fatalf("write live config: %v", err)
	}
	resetGlobalFlags()
	return dir
}

func resetProfileFlags() {
	profileDescription = ""
	profileForce = false
	profileSyncDryRun = false
	profileSyncYes = false
}

func TestProfileLifecycle(t *testing.T) {
	dir := profileTestDir(t)
	resetProfileFlags()

	output, err := captureOutput(t, runProfileCurrent)
	if err != nil {
		t.Fatalf("runProfileCurrent() error = %v", err)
	}
	assertContains(t, output, []string{"default"})

	profileDescription = "Work servers"
	output, err = captureOutput(t, func() error {
		return runProfileCreate([]string{"work"})
	})
	if err != nil {
		t.Fatalf("runProfileCreate() error = %v", err)
	}
	assertContains(t, output, []string{`✓ Created profile "work"`})

	output, err = captureOutput(t, runProfileList)
	if err != nil {
		t.Fatalf("runProfileList() error = %v", err)
	}
	assertContains(t, output, []string{"Active profile: default", "work", "never", "Work servers"})

	output, err = captureOutput(t, func() error {
		return runProfileSwitch([]string{"work"})
	})
	if err != nil {
		t.Fatalf("runProfileSwitch() error = %v", err)
	}
	assertContains(t, output, []string{`✓ Switched to profile "work"`, "Restart the desktop application"})

	// The live document is now the (empty) work profile; the previous
	// one is parked under the default profile's name.
	live, err := config.Load(filepath.Join(dir, paths.ConfigFileName))
	if err != nil {
		t.Fatalf("load live config: %v", err)
	}
	if live.Len() != 0 {
		t.Errorf("live document has %d servers, want the empty work profile", live.Len())
	}
	parked, err := config.Load(filepath.Join(dir, "profile_default.json"))
	if err != nil {
		t.Fatalf("load parked default: %v", err)
	}
	if !parked.Has("github") {
		t.Error("parked default profile lost the github entry")
	}

	output, err = captureOutput(t, runProfileCurrent)
	if err != nil {
		t.Fatalf("runProfileCurrent() error = %v", err)
	}
	assertContains(t, output, []string{"work"})

	if _, err := captureOutput(t, func() error {
		return runProfileSwitch([]string{"default"})
	}); err != nil {
		t.Fatalf("switch back to default: %v", err)
	}
	live, err = config.Load(filepath.Join(dir, paths.ConfigFileName))
	if err != nil {
		t.Fatalf("load live config: %v", err)
	}
	if !live.Has("github") {
		t.Error("switching back did not restore the primary document")
	}
}

func TestProfileCreateRejectsReservedName(t *testing.T) {
	profileTestDir(t)
	resetProfileFlags()

	_, err := captureOutput(t, func() error {
		return runProfileCreate([]string{"default"})
	})
	if !types.IsKind(err, types.ErrKindValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestProfileDeleteActiveNeedsForce(t *testing.T) {
	profileTestDir(t)
	resetProfileFlags()

	if _, err := captureOutput(t, func() error {
		return runProfileCreate([]string{"staging"})
	}); err != nil {
		t.Fatalf("create staging: %v", err)
	}
	if _, err := captureOutput(t, func() error {
		return runProfileSwitch([]string{"staging"})
	}); err != nil {
		t.Fatalf("switch to staging: %v", err)
	}

	_, err := captureOutput(t, func() error {
		return runProfileDelete([]string{"staging"})
	})
	if !types.IsKind(err, types.ErrKindState) {
		t.Fatalf("expected a state error for deleting the active profile, got %v", err)
	}

	profileForce = true
	output, err := captureOutput(t, func() error {
		return runProfileDelete([]string{"staging"})
	})
	if err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	assertContains(t, output, []string{`✓ Deleted profile "staging"`})

	output, err = captureOutput(t, runProfileCurrent)
	if err != nil {
		t.Fatalf("runProfileCurrent() error = %v", err)
	}
	assertContains(t, output, []string{"default"})
}

func TestProfileSync(t *testing.T) {
	dir := profileTestDir(t)
	resetProfileFlags()

	if _, err := captureOutput(t, func() error {
		return runProfileCreate([]string{"work"})
	}); err != nil {
		t.Fatalf("create work: %v", err)
	}

	profileSyncDryRun = true
	output, err := captureOutput(t, func() error {
		return runProfileSync([]string{"default", "work"})
	})
	if err != nil {
		t.Fatalf("sync dry run: %v", err)
	}
	assertContains(t, output, []string{
		"Syncing default -> work:",
		"+ github", "+ api-east", "+ api-west",
		"Dry run: nothing written.",
	})

	parked, err := config.Load(filepath.Join(dir, "profile_work.json"))
	if err != nil {
		t.Fatalf("load parked work: %v", err)
	}
	if parked.Len() != 0 {
		t.Fatal("dry run must not write the target profile")
	}

	profileSyncDryRun = false
	profileSyncYes = true
	output, err = captureOutput(t, func() error {
		return runProfileSync([]string{"default", "work"})
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	assertContains(t, output, []string{"✓ Synced default -> work"})

	parked, err = config.Load(filepath.Join(dir, "profile_work.json"))
	if err != nil {
		t.Fatalf("load parked work: %v", err)
	}
	if !parked.Has("github") || parked.Len() != 3 {
		t.Errorf("work profile holds %v, want the default profile's three servers", parked.Names())
	}
}

func TestProfileSyncSameProfile(t *testing.T) {
	profileTestDir(t)
	resetProfileFlags()
	profileSyncYes = true

	_, err := captureOutput(t, func() error {
		return runProfileSync([]string{"default", "default"})
	})
	if !types.IsKind(err, types.ErrKindValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}
