package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/mcpkit/pkg/types"
)

func sampleTemplate() *Template {
	return &Template{
		Name:        "github",
		Version:     "1.0.0",
		Description: "GitHub access",
		Author:      "test",
		Variables: map[string]Variable{
			"token": {Type: TypeString, Description: "access token", Required: true},
			"debug": {Type: TypeBoolean, Description: "verbose logging", Default: false},
			"mode": {
				Type:        TypeSelect,
				Description: "operating mode",
				Options:     []string{"read", "write"},
				Default:     "read",
			},
		},
		Config: Config{
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-github"},
			Env:     map[string]string{"GITHUB_PERSONAL_ACCESS_TOKEN": "{{token}}"},
		},
	}
}

func TestConfigValidateExclusivity(t *testing.T) {
	assert.NoError(t, Config{Command: "npx"}.Validate())
	assert.NoError(t, Config{URL: "https://example.com/mcp"}.Validate())

	err := Config{}.Validate()
	require.Error(t, err)
	assert.True(t, types.IsKind(err, types.ErrKindValidation))

	err = Config{Command: "npx", URL: "https://example.com"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestTemplateValidate(t *testing.T) {
	require.NoError(t, sampleTemplate().Validate())

	noName := sampleTemplate()
	noName.Name = "  "
	assert.Error(t, noName.Validate())

	badType := sampleTemplate()
	badType.Variables["oops"] = Variable{Type: "tuple"}
	err := badType.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown type "tuple"`)

	noOptions := sampleTemplate()
	noOptions.Variables["pick"] = Variable{Type: TypeSelect}
	err = noOptions.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no options")
}

// TestCheckVars walks the required/null/empty/select rules.
func TestCheckVars(t *testing.T) {
	tpl := sampleTemplate()

	require.NoError(t, tpl.CheckVars(map[string]any{"token": "ghp_abc123"}))
	require.NoError(t, tpl.CheckVars(map[string]any{"token": "ghp_abc123", "debug": true, "mode": "write"}))

	err := tpl.CheckVars(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required variable "token" is missing`)

	err = tpl.CheckVars(map[string]any{"token": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	err = tpl.CheckVars(map[string]any{"token": ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	err = tpl.CheckVars(map[string]any{"token": "ghp_abc123", "mode": "append"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `must be one of [read write]`)

	err = tpl.CheckVars(map[string]any{"token": "ghp_abc123", "typo": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown variable "typo"`)
}

// TestCheckVarsDefaultSatisfiesRequired verifies a declared default
// makes a required variable optional.
func TestCheckVarsDefaultSatisfiesRequired(t *testing.T) {
	tpl := sampleTemplate()
	v := tpl.Variables["token"]
	v.Default = "ghp_default"
	tpl.Variables["token"] = v

	assert.NoError(t, tpl.CheckVars(map[string]any{}))
}

func TestSupportsPlatform(t *testing.T) {
	all := sampleTemplate()
	assert.True(t, all.SupportsPlatform("linux"))
	assert.True(t, all.SupportsPlatform("windows"))

	mac := sampleTemplate()
	mac.Platforms = []string{"macos"}
	assert.True(t, mac.SupportsPlatform("macos"))
	assert.False(t, mac.SupportsPlatform("linux"))
}

// TestTemplateJSONShape pins the wire field names so catalog files
// stay interoperable.
func TestTemplateJSONShape(t *testing.T) {
	raw := `{
		"name": "sqlite",
		"version": "2.1.0",
		"description": "SQLite access",
		"author": "upstream",
		"tags": ["database"],
		"platforms": ["macos", "linux"],
		"variables": {
			"db_path": {"type": "string", "description": "database file", "required": true}
		},
		"config": {
			"command": "uvx",
			"args": ["mcp-server-sqlite", "--db-path", "{{db_path}}"]
		},
		"requirements": {"python": ">=3.10"},
		"setup_instructions": "none"
	}`

	var tpl Template
	require.NoError(t, json.Unmarshal([]byte(raw), &tpl))
	assert.Equal(t, "sqlite", tpl.Name)
	assert.Equal(t, TypeString, tpl.Variables["db_path"].Type)
	assert.True(t, tpl.Variables["db_path"].Required)
	assert.Equal(t, "uvx", tpl.Config.Command)
	assert.Equal(t, ">=3.10", tpl.Requirements["python"])
	require.NoError(t, tpl.Validate())

	out, err := json.Marshal(&tpl)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"setup_instructions":"none"`)
	assert.NotContains(t, string(out), `"url"`)
}

func TestVarTypeValid(t *testing.T) {
	for _, vt := range []VarType{TypeString, TypeBoolean, TypeNumber, TypeArray, TypeSelect} {
		assert.True(t, vt.Valid(), string(vt))
	}
	assert.False(t, VarType("struct").Valid())
	assert.False(t, VarType("").Valid())
}
