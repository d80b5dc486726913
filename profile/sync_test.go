package profile

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// TestSyncReplacesTarget verifies replace semantics and the report's
// added/overwritten/removed split.
func TestSyncReplacesTarget(t *testing.T) {
	m := testManager(t)
	writeLive(t, m, "alpha", "beta")
	_, err := m.Create("dev", "")
	require.NoError(t, err)
	writeProfileDoc(t, m.profilePath("dev"), "beta", "gamma")

	report, err := m.Sync(DefaultName, "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, report.Added)
	assert.Equal(t, []string{"beta"}, report.Overwritten)
	assert.Equal(t, []string{"gamma"}, report.Removed)

	assert.Equal(t, []string{"alpha", "beta"}, docNames(t, m.profilePath("dev")))

	st, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Profiles["dev"].ServerCount)

	// source untouched
	assert.Equal(t, []string{"alpha", "beta"}, docNames(t, m.configPath()))
}

// TestPreviewSync verifies the dry path writes nothing.
func TestPreviewSync(t *testing.T) {
	m := testManager(t)
	writeLive(t, m, "alpha")
	_, err := m.Create("dev", "")
	require.NoError(t, err)
	writeProfileDoc(t, m.profilePath("dev"), "beta")

	before, err := os.ReadFile(m.profilePath("dev"))
	require.NoError(t, err)

	report, err := m.PreviewSync(DefaultName, "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, report.Added)
	assert.Equal(t, []string{"beta"}, report.Removed)
	assert.Empty(t, report.Overwritten)

	after, err := os.ReadFile(m.profilePath("dev"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// TestSyncIntoActive verifies syncing into the active profile updates
// the live file.
func TestSyncIntoActive(t *testing.T) {
	m := testManager(t)
	writeLive(t, m, "alpha")
	_, err := m.Create("dev", "")
	require.NoError(t, err)
	writeProfileDoc(t, m.profilePath("dev"), "delta")
	require.NoError(t, m.Switch("dev"))

	_, err = m.Sync(DefaultName, "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, docNames(t, m.configPath()))
}

func TestSyncErrors(t *testing.T) {
	m := testManager(t)
	_, err := m.Create("dev", "")
	require.NoError(t, err)

	_, err = m.Sync("dev", "dev")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindValidation))

	_, err = m.Sync("ghost", "dev")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))
	assert.Contains(t, err.Error(), "source profile")

	_, err = m.Sync("dev", "ghost")
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))
	assert.Contains(t, err.Error(), "target profile")
}
