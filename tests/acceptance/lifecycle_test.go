package acceptance

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/tx"
	"github.com/joshuapare/mcpkit/pkg/mcp"
)

// TestLifecycle_AddCommitAndSnapshot walks one change through the whole
// pipeline: plan with a masked preview, snapshot, atomic commit, and a
// reloadable pre-change snapshot next to the document.
func TestLifecycle_AddCommitAndSnapshot(t *testing.T) {
	path := writeConfig(t)
	before := readConfig(t, path)

	const rawKey = "bsk_livekey1234567890"
	const maskedKey = "bsk***************890"

	res, err := mcp.Add(context.Background(), path, "brave", config.Server{
		Command: "npx",
		Args:    []string{"-y", "@modelcontextprotocol/server-brave-search"},
		Env:     map[string]string{"BRAVE_API_KEY": rawKey},
	}, nil)
	require.NoError(t, err)
	require.True(t, res.Applied())
	assert.Equal(t, tx.StateCommitted, res.Tx.State)

	// The preview shows the secret masked and never in the clear.
	preview := strings.Join(res.Plan.Preview(), "\n")
	assert.Contains(t, preview, "+ brave")
	assert.Contains(t, preview, "env.BRAVE_API_KEY="+maskedKey)
	assert.NotContains(t, preview, rawKey)

	// The file carries the real value; masking is presentation only.
	data := readConfig(t, path)
	assert.Contains(t, string(data), rawKey)
	assert.NotContains(t, string(data), maskedKey)

	// Fields outside the entry map survive, and declaration order holds
	// with the new entry appended.
	assert.Contains(t, string(data), `"globalShortcut": "Alt+Space"`)
	assert.Contains(t, string(data), `"theme": "dark"`)
	doc := mustLoad(t, path)
	assert.Equal(t, []string{"github", "files", "db-staging", "db-prod", "brave"}, doc.Names())

	// Exactly one snapshot, taken before the change, restorable byte for
	// byte.
	snaps := listSnapshots(t, path)
	require.Len(t, snaps, 1)
	assert.Equal(t, "auto", snaps[0].Metadata.Label)
	assert.Equal(t, 4, snaps[0].Metadata.ServerCount)
	saved := loadSnapshot(t, path, snaps[0])
	assert.True(t, bytes.Equal(before, saved.Raw()), "snapshot must preserve the pre-change document exactly")
}

// TestLifecycle_RemoveThenRestore round-trips a destructive change
// through the snapshot taken for it.
func TestLifecycle_RemoveThenRestore(t *testing.T) {
	path := writeConfig(t)
	before := readConfig(t, path)

	res, err := mcp.Remove(context.Background(), path, "github", nil)
	require.NoError(t, err)
	require.True(t, res.Applied())
	assert.False(t, mustLoad(t, path).Has("github"))

	snaps := listSnapshots(t, path)
	require.Len(t, snaps, 1)

	restored, err := mcp.Restore(context.Background(), path, snaps[0].Metadata.Name, nil)
	require.NoError(t, err)
	require.True(t, restored.Applied())

	after := mustLoad(t, path)
	s, ok := after.Get("github")
	require.True(t, ok)
	assert.Equal(t, "npx", s.Command)
	assert.Equal(t, rawToken, s.Env["GITHUB_TOKEN"])

	// The document again holds every original entry in order.
	orig, err := config.Parse(before)
	require.NoError(t, err)
	assert.Equal(t, orig.Names(), after.Names())

	// Restore is a transaction of its own, so the state it replaced is
	// itself preserved in a fresh snapshot.
	snaps = listSnapshots(t, path)
	assert.GreaterOrEqual(t, len(snaps), 2)
}
