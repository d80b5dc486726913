package template

import (
	"fmt"
	"strings"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// VarType names the value shape a template variable accepts.
type VarType string

const (
	// TypeString is a free-form text value.
	TypeString VarType = "string"
	// TypeBoolean is true or false.
	TypeBoolean VarType = "boolean"
	// TypeNumber is an integer or float.
	TypeNumber VarType = "number"
	// TypeArray is a list of strings, rendered space-separated.
	TypeArray VarType = "array"
	// TypeSelect is a string restricted to the variable's Options.
	TypeSelect VarType = "select"
)

// Valid reports whether t is one of the known variable types.
func (t VarType) Valid() bool {
	switch t {
	case TypeString, TypeBoolean, TypeNumber, TypeArray, TypeSelect:
		return true
	}
	return false
}

// Variable declares one parameter of a template.
type Variable struct {
	// Type constrains the values this variable accepts.
	Type VarType `json:"type"`

	// Description explains the variable to the person filling it in.
	Description string `json:"description"`

	// Default is substituted when the caller supplies no value.
	// A variable with a default is effectively optional.
	Default any `json:"default,omitempty"`

	// Required forces the caller to supply a non-empty value.
	Required bool `json:"required"`

	// Validation is an optional regular expression the supplied
	// value must match. Empty means no constraint.
	Validation string `json:"validation,omitempty"`

	// Options lists the allowed values for TypeSelect variables.
	Options []string `json:"options,omitempty"`
}

// Config is the entry blueprint inside a template. Exactly one of
// Command and URL must be set: command templates render into local
// entries, URL templates describe hosted endpoints and cannot render
// into the local entry model.
type Config struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	URL     string            `json:"url,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// Validate checks the command/url exclusivity rule.
func (c Config) Validate() error {
	switch {
	case c.Command == "" && c.URL == "":
		return &types.Error{Kind: types.ErrKindValidation, Msg: "template config must set either command or url"}
	case c.Command != "" && c.URL != "":
		return &types.Error{Kind: types.ErrKindValidation, Msg: "template config cannot set both command and url"}
	}
	return nil
}

// Template is a parameterized server definition.
type Template struct {
	// Name identifies the template in the catalog.
	Name string `json:"name"`

	// Version is the template's own version, not the server's.
	Version string `json:"version"`

	Description string   `json:"description"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags,omitempty"`

	// Platforms lists the operating systems the template supports,
	// using the names "windows", "macos" and "linux". Empty means
	// all platforms.
	Platforms []string `json:"platforms,omitempty"`

	// Variables declares the template's parameters by name.
	Variables map[string]Variable `json:"variables,omitempty"`

	// Config is the blueprint the variables render into.
	Config Config `json:"config"`

	// Requirements maps external prerequisites to version hints,
	// e.g. "node" -> ">=18". Informational only.
	Requirements map[string]string `json:"requirements,omitempty"`

	// SetupInstructions is free-form text shown after installation.
	SetupInstructions string `json:"setup_instructions,omitempty"`
}

// Validate checks the template's own consistency: the config rule and
// every variable declaration. It does not look at caller values; see
// CheckVars for that.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &types.Error{Kind: types.ErrKindValidation, Msg: "template has no name"}
	}
	if err := t.Config.Validate(); err != nil {
		return err
	}
	for name, v := range t.Variables {
		if !v.Type.Valid() {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q has unknown type %q", name, v.Type)}
		}
		if v.Type == TypeSelect && len(v.Options) == 0 {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("select variable %q has no options", name)}
		}
	}
	return nil
}

// SupportsPlatform reports whether the template runs on the named
// platform ("windows", "macos" or "linux"). Templates that list no
// platforms support all of them.
func (t *Template) SupportsPlatform(platform string) bool {
	if len(t.Platforms) == 0 {
		return true
	}
	for _, p := range t.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// CheckVars verifies caller-supplied values against the template's
// variable declarations: required variables must be present and
// non-empty, select values must be one of the declared options, and
// unknown names are rejected.
func (t *Template) CheckVars(vars map[string]any) error {
	for name := range vars {
		if _, ok := t.Variables[name]; !ok {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("unknown variable %q", name)}
		}
	}
	for name, decl := range t.Variables {
		val, ok := vars[name]
		if !ok {
			if decl.Required && decl.Default == nil {
				return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("required variable %q is missing", name)}
			}
			continue
		}
		if val == nil {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q is null", name)}
		}
		if s, isStr := val.(string); isStr && decl.Required && s == "" {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("required variable %q is empty", name)}
		}
		if decl.Type == TypeSelect {
			if err := checkSelect(name, decl, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSelect(name string, decl Variable, val any) error {
	s, ok := val.(string)
	if !ok {
		return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q must be one of %v", name, decl.Options)}
	}
	for _, opt := range decl.Options {
		if s == opt {
			return nil
		}
	}
	return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q must be one of %v, got %q", name, decl.Options, s)}
}
