package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/pkg/types"
)

const plannerSample = `{
  "mcpServers": {
    "github": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-github"],
      "env": {"GITHUB_TOKEN": "abcdef1234567890"}
    },
    "filesystem": {
      "command": "npx",
      "args": ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]
    },
    "fetch": {
      "command": "uvx",
      "args": ["mcp-server-fetch"]
    }
  }
}`

func plannerDoc(t *testing.T) *config.Document {
	t.Helper()
	doc, err := config.Parse([]byte(plannerSample))
	require.NoError(t, err)
	return doc
}

// TestPlanAdd verifies that adding a new entry produces a single add diff
// with no before state.
func TestPlanAdd(t *testing.T) {
	doc := plannerDoc(t)
	pl := NewPlanner(doc, verify.Options{})

	p, err := pl.Plan(AddOne("sqlite", config.Server{
		Command: "uvx",
		Args:    []string{"mcp-server-sqlite", "--db-path", "/tmp/db"},
	}))
	require.NoError(t, err)
	require.Equal(t, 1, p.Size())

	d := p.Diffs[0]
	assert.Equal(t, "sqlite", d.Name)
	assert.Equal(t, DiffAdd, d.Kind)
	assert.Nil(t, d.Before)
	require.NotNil(t, d.After)
	assert.Equal(t, "uvx", d.After.Command)
	assert.True(t, p.OK())
	assert.False(t, p.Approved)
	assert.Equal(t, doc.Stamp(), p.Base)

	// planning must not touch the document
	assert.False(t, doc.Has("sqlite"))
}

// TestPlanAddExisting verifies the exists error for duplicate names.
func TestPlanAddExisting(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	_, err := pl.Plan(AddOne("github", config.Server{Command: "npx"}))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindExists))
}

// TestPlanAddEmptyName verifies blank names are rejected at plan time.
func TestPlanAddEmptyName(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	for _, name := range []string{"", "   "} {
		_, err := pl.Plan(AddOne(name, config.Server{Command: "npx"}))
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindValidation))
	}
}

// TestPlanAddInvalidEntry verifies that validation findings ride along on
// the diff instead of failing plan computation.
func TestPlanAddInvalidEntry(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	p, err := pl.Plan(AddOne("broken", config.Server{Command: ""}))
	require.NoError(t, err)
	require.Equal(t, 1, p.Size())
	assert.False(t, p.OK())
	assert.NotEmpty(t, p.Diffs[0].Validation.Errors())
}

// TestPlanUpdate verifies the single-entry update path.
func TestPlanUpdate(t *testing.T) {
	doc := plannerDoc(t)
	pl := NewPlanner(doc, verify.Options{})

	p, err := pl.Plan(UpdateOne("github", SetEnv("GITHUB_TOKEN", "refreshed-value-123")))
	require.NoError(t, err)
	require.Equal(t, 1, p.Size())

	d := p.Diffs[0]
	assert.Equal(t, DiffUpdate, d.Kind)
	require.NotNil(t, d.Before)
	require.NotNil(t, d.After)
	assert.Equal(t, "abcdef1234567890", d.Before.Env["GITHUB_TOKEN"])
	assert.Equal(t, "refreshed-value-123", d.After.Env["GITHUB_TOKEN"])

	// snapshot stays untouched
	cur, ok := doc.Get("github")
	require.True(t, ok)
	assert.Equal(t, "abcdef1234567890", cur.Env["GITHUB_TOKEN"])
}

// TestPlanUpdateMissing verifies the not-found error.
func TestPlanUpdateMissing(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	_, err := pl.Plan(UpdateOne("nope", SetCommand("npx")))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))
}

// TestPlanRemoveOne verifies single-entry removal by exact name, even a
// name full of selector metacharacters.
func TestPlanRemoveOne(t *testing.T) {
	doc := plannerDoc(t)
	require.NoError(t, doc.Set("a*b", config.Server{Command: "deno"}))
	pl := NewPlanner(doc, verify.Options{})

	p, err := pl.Plan(RemoveOne("a*b"))
	require.NoError(t, err)
	require.Equal(t, 1, p.Size())
	assert.Equal(t, DiffRemove, p.Diffs[0].Kind)
	assert.Equal(t, "a*b", p.Diffs[0].Name)
	require.NotNil(t, p.Diffs[0].Before)
	assert.Equal(t, "deno", p.Diffs[0].Before.Command)

	_, err = pl.Plan(RemoveOne("absent"))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindNotFound))
}

// TestPlanUpdateNilMutator verifies that an update without a mutator is
// rejected as a state error.
func TestPlanUpdateNilMutator(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	_, err := pl.Plan(UpdateOne("github", nil))
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindState))
}

// TestPlanUpdateMutatorError verifies mutator failures abort the plan.
func TestPlanUpdateMutatorError(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	boom := errors.New("boom")
	_, err := pl.Plan(UpdateOne("github", func(string, config.Server) (config.Server, error) {
		return config.Server{}, boom
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `mutate "github"`)
}

// TestPlanRemoveMany verifies selector resolution in declaration order.
func TestPlanRemoveMany(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	p, err := pl.Plan(RemoveMany("f*"))
	require.NoError(t, err)
	require.Equal(t, 2, p.Size())

	assert.Equal(t, "filesystem", p.Diffs[0].Name)
	assert.Equal(t, "fetch", p.Diffs[1].Name)
	for _, d := range p.Diffs {
		assert.Equal(t, DiffRemove, d.Kind)
		assert.NotNil(t, d.Before)
		assert.Nil(t, d.After)
	}
	assert.True(t, p.OK())
}

// TestPlanRemoveManyNoMatch verifies the empty-match plan: zero diffs plus
// a warning, never an error.
func TestPlanRemoveManyNoMatch(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	p, err := pl.Plan(RemoveMany("postgres*"))
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.True(t, p.OK())

	warns := p.Issues.Warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "no entries matched")
}

// TestPlanBadSelector verifies pattern errors propagate with their kind.
func TestPlanBadSelector(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	for _, op := range []Operation{RemoveMany("[oops"), UpdateMany("{a,b", SetCommand("x"))} {
		_, err := pl.Plan(op)
		require.Error(t, err)
		assert.True(t, types.IsKind(err, types.ErrKindPattern))
	}
}

// TestPlanUpdateMany verifies bulk updates visit matches in declaration
// order and carry per-entry before/after pairs.
func TestPlanUpdateMany(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	p, err := pl.Plan(UpdateMany("*", SetEnv("LOG_LEVEL", "debug")))
	require.NoError(t, err)
	require.Equal(t, 3, p.Size())

	var names []string
	for _, d := range p.Diffs {
		names = append(names, d.Name)
		assert.Equal(t, DiffUpdate, d.Kind)
		assert.Equal(t, "debug", d.After.Env["LOG_LEVEL"])
		assert.NotEqual(t, "debug", d.Before.Env["LOG_LEVEL"])
	}
	assert.Equal(t, []string{"github", "filesystem", "fetch"}, names)
}

// TestPlanUpdateManyMutatorFailure verifies a failure on any match aborts
// the whole plan.
func TestPlanUpdateManyMutatorFailure(t *testing.T) {
	pl := NewPlanner(plannerDoc(t), verify.Options{})
	_, err := pl.Plan(UpdateMany("f*", func(name string, s config.Server) (config.Server, error) {
		if name == "fetch" {
			return config.Server{}, errors.New("fetch refused")
		}
		return s, nil
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `mutate "fetch"`)
}

// TestMutators exercises the mutator constructors.
func TestMutators(t *testing.T) {
	base := config.Server{Command: "npx", Args: []string{"-y"}}

	s, err := SetCommand("uvx")("x", base.Clone())
	require.NoError(t, err)
	assert.Equal(t, "uvx", s.Command)

	s, err = SetArgs("a", "b")("x", base.Clone())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.Args)

	s, err = AppendArgs("--verbose")("x", base.Clone())
	require.NoError(t, err)
	assert.Equal(t, []string{"-y", "--verbose"}, s.Args)

	s, err = SetEnv("KEY", "v")("x", base.Clone())
	require.NoError(t, err)
	assert.Equal(t, "v", s.Env["KEY"])

	s, err = UnsetEnv("KEY")("x", s)
	require.NoError(t, err)
	_, ok := s.Env["KEY"]
	assert.False(t, ok)

	// unsetting an absent key is fine
	_, err = UnsetEnv("MISSING")("x", base.Clone())
	require.NoError(t, err)

	repl := config.Server{Command: "docker", Args: []string{"run"}}
	s, err = Replace(repl)("x", base.Clone())
	require.NoError(t, err)
	assert.True(t, s.Equal(repl))

	s, err = Chain(SetCommand("deno"), AppendArgs("task"))("x", base.Clone())
	require.NoError(t, err)
	assert.Equal(t, "deno", s.Command)
	assert.Equal(t, []string{"-y", "task"}, s.Args)

	_, err = Chain(SetCommand("deno"), func(string, config.Server) (config.Server, error) {
		return config.Server{}, errors.New("halt")
	}, AppendArgs("never"))("x", base.Clone())
	require.Error(t, err)
}

// TestOpKindString pins the operation kind names.
func TestOpKindString(t *testing.T) {
	assert.Equal(t, "add", OpAdd.String())
	assert.Equal(t, "update", OpUpdate.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "remove-many", OpRemoveMany.String())
	assert.Equal(t, "update-many", OpUpdateMany.String())
	assert.Contains(t, OpKind(99).String(), "unknown")
}
