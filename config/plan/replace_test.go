package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/verify"
)

const replaceTarget = `{
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "abcdef1234567890"}
    },
    "sqlite": {
      "command": "uvx",
      "args": ["mcp-server-sqlite", "--db-path", "/tmp/db"]
    }
  }
}`

// TestPlanReplace verifies the computed diff set: adds for target-only
// names, removes for current-only names, nothing for identical entries.
func TestPlanReplace(t *testing.T) {
	doc := plannerDoc(t)
	target, err := config.Parse([]byte(replaceTarget))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanReplace(target)
	require.NoError(t, err)

	kinds := map[string]DiffKind{}
	for _, d := range p.Diffs {
		kinds[d.Name] = d.Kind
	}
	assert.Equal(t, map[string]DiffKind{
		"sqlite":     DiffAdd,
		"filesystem": DiffRemove,
		"fetch":      DiffRemove,
	}, kinds)

	// github is identical in both documents and produces no diff
	assert.NotContains(t, kinds, "github")
	assert.True(t, p.OK())
}

// TestPlanReplaceOrdering verifies adds/updates come first in target
// declaration order, then removes in current declaration order.
func TestPlanReplaceOrdering(t *testing.T) {
	doc, err := config.Parse([]byte(`{"mcpServers": {
		"a": {"command": "x"},
		"b": {"command": "x"},
		"c": {"command": "x"}
	}}`))
	require.NoError(t, err)
	target, err := config.Parse([]byte(`{"mcpServers": {
		"d": {"command": "y"},
		"b": {"command": "y"},
		"e": {"command": "y"}
	}}`))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanReplace(target)
	require.NoError(t, err)

	var got []string
	for _, d := range p.Diffs {
		got = append(got, d.Kind.String()+":"+d.Name)
	}
	assert.Equal(t, []string{
		"add:d", "update:b", "add:e",
		"remove:a", "remove:c",
	}, got)

	// The plan carries the target's declaration order so the executor
	// can reproduce it; adds would otherwise land at the end.
	assert.Equal(t, []string{"d", "b", "e"}, p.Order)
}

// TestPlanReplaceOrderOnly verifies a target holding the same entries in
// a different order still produces an applicable plan.
func TestPlanReplaceOrderOnly(t *testing.T) {
	doc, err := config.Parse([]byte(`{"mcpServers": {
		"a": {"command": "x"},
		"b": {"command": "x"}
	}}`))
	require.NoError(t, err)
	target, err := config.Parse([]byte(`{"mcpServers": {
		"b": {"command": "x"},
		"a": {"command": "x"}
	}}`))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanReplace(target)
	require.NoError(t, err)
	assert.Empty(t, p.Diffs)
	assert.Equal(t, []string{"b", "a"}, p.Order)
	assert.False(t, p.IsEmpty())
}

// TestPlanReplaceIdentical verifies an empty plan plus a warning when
// there is nothing to change.
func TestPlanReplaceIdentical(t *testing.T) {
	doc := plannerDoc(t)
	target := plannerDoc(t)

	p, err := NewPlanner(doc, verify.Options{}).PlanReplace(target)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Empty(t, p.Order)
	require.Len(t, p.Issues.Issues, 1)
	assert.Equal(t, verify.SeverityWarning, p.Issues.Issues[0].Severity)
}

// TestPlanReplaceValidatesAfter verifies incoming entries are validated
// like any other proposed change.
func TestPlanReplaceValidatesAfter(t *testing.T) {
	doc := plannerDoc(t)
	target, err := config.Parse([]byte(`{"mcpServers": {"broken": {"command": ""}}}`))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanReplace(target)
	require.NoError(t, err)
	assert.False(t, p.OK())
}

// TestPlanMergeSkip verifies existing names are kept and warned about.
func TestPlanMergeSkip(t *testing.T) {
	doc := plannerDoc(t)
	incoming, err := config.Parse([]byte(replaceTarget))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanMerge(incoming, MergeSkip)
	require.NoError(t, err)

	require.Equal(t, 1, p.Size())
	assert.Equal(t, "sqlite", p.Diffs[0].Name)
	assert.Equal(t, DiffAdd, p.Diffs[0].Kind)

	warnings := p.Issues.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "github", warnings[0].Field)
}

// TestPlanMergeOverwrite verifies existing names are updated, but only
// when the incoming entry actually differs.
func TestPlanMergeOverwrite(t *testing.T) {
	doc := plannerDoc(t)
	incoming, err := config.Parse([]byte(`{"mcpServers": {
		"github": {"command": "docker", "args": ["run", "ghcr.io/github/github-mcp-server"]},
		"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]},
		"sqlite": {"command": "uvx", "args": ["mcp-server-sqlite"]}
	}}`))
	require.NoError(t, err)

	p, err := NewPlanner(doc, verify.Options{}).PlanMerge(incoming, MergeOverwrite)
	require.NoError(t, err)

	kinds := map[string]DiffKind{}
	for _, d := range p.Diffs {
		kinds[d.Name] = d.Kind
	}
	assert.Equal(t, map[string]DiffKind{
		"github": DiffUpdate,
		"sqlite": DiffAdd,
	}, kinds)
	// fetch is identical and produces neither a diff nor a warning
	assert.NotContains(t, kinds, "fetch")
	assert.Empty(t, p.Issues.Issues)
}

// TestPlanMergeNothing verifies the empty-merge warning.
func TestPlanMergeNothing(t *testing.T) {
	doc := plannerDoc(t)

	p, err := NewPlanner(doc, verify.Options{}).PlanMerge(config.New(), MergeOverwrite)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	require.Len(t, p.Issues.Issues, 1)
}
