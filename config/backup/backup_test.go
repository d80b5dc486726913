package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/pkg/types"
)

const backupSample = `{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {
    "zeta": {"command": "npx", "args": ["-y", "zeta"], "env": {"TOKEN": "abcdef1234567890"}},
    "alpha": {"command": "uvx", "args": []}
  }
}`

func backupDoc(t *testing.T) *config.Document {
	t.Helper()
	doc, err := config.Parse([]byte(backupSample))
	require.NoError(t, err)
	return doc
}

func fixedStore(t *testing.T, at time.Time) *Store {
	t.Helper()
	st := NewStore(filepath.Join(t.TempDir(), "backups"))
	st.Now = func() time.Time { return at }
	return st
}

// TestCreateAndLoad verifies a snapshot round trip preserves the document
// byte layout: entry order and unknown fields included.
func TestCreateAndLoad(t *testing.T) {
	at := time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC)
	st := fixedStore(t, at)

	e, err := st.Create(backupDoc(t), "")
	require.NoError(t, err)
	assert.Equal(t, "config_backup_20250309_143000", e.Metadata.Name)
	assert.Equal(t, 2, e.Metadata.ServerCount)
	assert.Equal(t, at, e.Metadata.CreatedAt)
	assert.FileExists(t, e.Path)

	doc, err := st.Load(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, doc.Names())
	assert.Contains(t, string(doc.Raw()), "globalShortcut")

	// The envelope carries the document bytes verbatim: whitespace,
	// entry order and unmodeled fields all survive the round trip.
	assert.Equal(t, backupSample, string(doc.Raw()))

	got, ok := doc.Get("zeta")
	require.True(t, ok)
	assert.Equal(t, "abcdef1234567890", got.Env["TOKEN"])
}

// TestCreateWithLabel verifies labels land in the file name, sanitized.
func TestCreateWithLabel(t *testing.T) {
	st := fixedStore(t, time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC))
	e, err := st.Create(backupDoc(t), "before upgrade/v2")
	require.NoError(t, err)
	assert.Equal(t, "config_backup_20250309_143000_before_upgrade_v2", e.Metadata.Name)
	assert.Equal(t, "before upgrade/v2", e.Metadata.Label)
}

// TestCreateSameSecond verifies snapshots in the same second never
// overwrite each other.
func TestCreateSameSecond(t *testing.T) {
	st := fixedStore(t, time.Date(2025, 3, 9, 14, 30, 0, 0, time.UTC))
	doc := backupDoc(t)

	first, err := st.Create(doc, "")
	require.NoError(t, err)
	second, err := st.Create(doc, "")
	require.NoError(t, err)
	third, err := st.Create(doc, "")
	require.NoError(t, err)

	assert.Equal(t, "config_backup_20250309_143000", first.Metadata.Name)
	assert.Equal(t, "config_backup_20250309_143000_2", second.Metadata.Name)
	assert.Equal(t, "config_backup_20250309_143000_3", third.Metadata.Name)
}

// TestListOrderAndTolerance verifies newest-first ordering and that
// foreign files in the directory are skipped.
func TestListOrderAndTolerance(t *testing.T) {
	st := fixedStore(t, time.Time{})
	doc := backupDoc(t)

	times := []time.Time{
		time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
	}
	for _, at := range times {
		st.Now = func() time.Time { return at }
		_, err := st.Create(doc, "")
		require.NoError(t, err)
	}

	// foreign files must not break listing
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir, "stray.json"), []byte(`{"mcpServers": {}}`), 0o644))

	entries, err := st.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "config_backup_20250305_100000", entries[0].Metadata.Name)
	assert.Equal(t, "config_backup_20250303_100000", entries[1].Metadata.Name)
	assert.Equal(t, "config_backup_20250301_100000", entries[2].Metadata.Name)
}

// TestListMissingDir verifies a store that never wrote anything lists
// empty.
func TestListMissingDir(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "never-created"))
	entries, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestFind verifies exact match, unique substring, ambiguity and absence.
func TestFind(t *testing.T) {
	st := fixedStore(t, time.Time{})
	doc := backupDoc(t)

	stamps := map[string]time.Time{
		"nightly": time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC),
		"weekly":  time.Date(2025, 3, 2, 2, 0, 0, 0, time.UTC),
	}
	for label, at := range stamps {
		st.Now = func() time.Time { return at }
		_, err := st.Create(doc, label)
		require.NoError(t, err)
	}

	e, err := st.Find("config_backup_20250301_020000_nightly")
	require.NoError(t, err)
	assert.Equal(t, "nightly", e.Metadata.Label)

	e, err = st.Find("weekly")
	require.NoError(t, err)
	assert.Equal(t, "weekly", e.Metadata.Label)

	_, err = st.Find("2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = st.Find("doesnotexist")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))
}

// TestPruneOlderThan verifies age-based pruning against a fixed clock.
func TestPruneOlderThan(t *testing.T) {
	st := fixedStore(t, time.Time{})
	doc := backupDoc(t)

	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{old, recent} {
		st.Now = func() time.Time { return at }
		_, err := st.Create(doc, "")
		require.NoError(t, err)
	}

	st.Now = func() time.Time { return time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC) }
	removed, err := st.PruneOlderThan(30 * 24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "config_backup_20250101_000000", removed[0].Metadata.Name)

	left, err := st.List()
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "config_backup_20250308_000000", left[0].Metadata.Name)
}

// TestPruneKeep verifies count-based pruning keeps the newest snapshots.
func TestPruneKeep(t *testing.T) {
	st := fixedStore(t, time.Time{})
	doc := backupDoc(t)
	for day := 1; day <= 4; day++ {
		at := time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
		st.Now = func() time.Time { return at }
		_, err := st.Create(doc, "")
		require.NoError(t, err)
	}

	removed, err := st.PruneKeep(2)
	require.NoError(t, err)
	require.Len(t, removed, 2)

	left, err := st.List()
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "config_backup_20250304_000000", left[0].Metadata.Name)
	assert.Equal(t, "config_backup_20250303_000000", left[1].Metadata.Name)

	// keeping more than exists removes nothing
	removed, err = st.PruneKeep(10)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

// TestParseAge pins the accepted duration forms.
func TestParseAge(t *testing.T) {
	cases := map[string]time.Duration{
		"30d":  30 * 24 * time.Hour,
		"2w":   14 * 24 * time.Hour,
		"24h":  24 * time.Hour,
		"60m":  60 * time.Minute,
		"7":    7 * 24 * time.Hour,
		" 1D ": 24 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseAge(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	for _, in := range []string{"", "d", "x5", "-3d", "1.5d"} {
		_, err := ParseAge(in)
		assert.Error(t, err, "input %q", in)
	}
}

// TestSanitizeLabel pins the character mapping.
func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "feature_new-stuff", SanitizeLabel("feature/new-stuff"))
	assert.Equal(t, "backup_2024", SanitizeLabel("backup:2024"))
	assert.Equal(t, "a_b_c_d_e_f_g_h_i", SanitizeLabel(`a\b:c*d?e"f<g>h|i`))
	assert.Equal(t, "normal-name", SanitizeLabel("normal-name"))
	assert.Equal(t, "padded", SanitizeLabel("  padded  "))
}

// TestAgeString pins the coarse age rendering.
func TestAgeString(t *testing.T) {
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2 day(s) ago", AgeString(now.Add(-49*time.Hour), now))
	assert.Equal(t, "3 hour(s) ago", AgeString(now.Add(-3*time.Hour-5*time.Minute), now))
	assert.Equal(t, "15 minute(s) ago", AgeString(now.Add(-15*time.Minute), now))
	assert.Equal(t, "just now", AgeString(now.Add(-20*time.Second), now))
}
