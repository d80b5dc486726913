package template

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/redact"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// placeholderRe matches one {{name}} placeholder. Names follow Go
// identifier rules; anything else (block helpers, partials) is
// rejected by the strict-mode check in renderString.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Builtin placeholder names resolved from the host machine rather than
// the caller's variables.
const (
	builtinOS        = "os"
	builtinArch      = "arch"
	builtinHomeDir   = "home_dir"
	builtinConfigDir = "config_dir"
)

// Renderer turns a template plus variable values into a concrete
// configuration entry. The zero value detects the host platform; the
// override fields exist for tests and cross-platform previews.
type Renderer struct {
	// Platform overrides the detected {{os}} value
	// ("windows", "macos" or "linux").
	Platform string

	// Arch overrides the detected {{arch}} value ("x64" or "arm64").
	Arch string

	// HomeDir overrides the {{home_dir}} lookup.
	HomeDir string

	// ConfigDir overrides the {{config_dir}} lookup.
	ConfigDir string
}

// Render validates vars against t and substitutes them into the
// template's config. See the package-level Render for the rules.
func (r *Renderer) Render(t *Template, vars map[string]any) (config.Server, error) {
	if err := t.Validate(); err != nil {
		return config.Server{}, err
	}
	if t.Config.URL != "" {
		return config.Server{}, &types.Error{
			Kind: types.ErrKindValidation,
			Msg:  fmt.Sprintf("template %q describes a hosted endpoint and cannot render a local entry", t.Name),
		}
	}
	if err := t.CheckVars(vars); err != nil {
		return config.Server{}, err
	}

	merged := effectiveVars(t, vars)
	if err := checkPatterns(t, merged); err != nil {
		return config.Server{}, err
	}

	cmd, err := r.renderString(t.Config.Command, merged)
	if err != nil {
		return config.Server{}, err
	}

	args, err := r.renderArgs(t.Config.Args, merged)
	if err != nil {
		return config.Server{}, err
	}

	env, err := r.renderEnv(t.Config.Env, merged)
	if err != nil {
		return config.Server{}, err
	}

	return config.Server{Command: cmd, Args: args, Env: env}, nil
}

// Render is shorthand for rendering with host-detected builtins.
//
// Every {{name}} placeholder must resolve to a supplied variable, a
// declared default, or a builtin; anything else is an error. An
// argument that consists of a single array placeholder expands into
// one argument per element, and a lone placeholder that renders empty
// drops the argument. Environment pairs whose rendered key or value is
// empty are dropped.
func Render(t *Template, vars map[string]any) (config.Server, error) {
	var r Renderer
	return r.Render(t, vars)
}

// effectiveVars overlays caller values on top of declared defaults.
func effectiveVars(t *Template, vars map[string]any) map[string]any {
	merged := make(map[string]any, len(t.Variables))
	for name, decl := range t.Variables {
		if decl.Default != nil {
			merged[name] = decl.Default
		}
	}
	for name, val := range vars {
		merged[name] = val
	}
	return merged
}

// checkPatterns enforces each variable's Validation regexp against the
// value that will be substituted. Values are masked in error messages
// when the variable name looks sensitive.
func checkPatterns(t *Template, merged map[string]any) error {
	for name, decl := range t.Variables {
		if decl.Validation == "" {
			continue
		}
		val, ok := merged[name]
		if !ok {
			continue
		}
		s, err := formatValue(name, val)
		if err != nil {
			return err
		}
		re, err := regexp.Compile(decl.Validation)
		if err != nil {
			return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q has an invalid validation pattern", name), Err: err}
		}
		if !re.MatchString(s) {
			return &types.Error{
				Kind: types.ErrKindValidation,
				Msg:  fmt.Sprintf("variable %q value %q does not match %s", name, redact.Mask(name, s), decl.Validation),
			}
		}
	}
	return nil
}

// renderString substitutes every placeholder in in. Unresolvable names
// and non-placeholder {{ syntax are errors. The syntax check runs over
// the whole input before any name is resolved, so a block helper like
// {{#each}} is reported as unsupported syntax rather than failing on
// the inner names it wraps; values substituted in are never re-scanned.
func (r *Renderer) renderString(in string, vars map[string]any) (string, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(in, -1)
	last := 0
	for _, m := range matches {
		if strings.Contains(in[last:m[0]], "{{") {
			return "", &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("unsupported placeholder syntax in %q", in)}
		}
		last = m[1]
	}
	if strings.Contains(in[last:], "{{") {
		return "", &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("unsupported placeholder syntax in %q", in)}
	}

	var sb strings.Builder
	last = 0
	for _, m := range matches {
		sb.WriteString(in[last:m[0]])
		name := in[m[2]:m[3]]
		val, err := r.resolve(name, vars)
		if err != nil {
			return "", err
		}
		sb.WriteString(val)
		last = m[1]
	}
	sb.WriteString(in[last:])
	return sb.String(), nil
}

// renderArgs renders each argument. An argument that is exactly one
// placeholder gets value-aware treatment: arrays expand to one
// argument per element and empty values drop the argument entirely.
// Mixed-content arguments render inline and are always kept.
func (r *Renderer) renderArgs(in []string, vars map[string]any) ([]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(in))
	for _, arg := range in {
		if name, lone := lonePlaceholder(arg); lone {
			if list, ok := asList(vars[name]); ok {
				out = append(out, list...)
				continue
			}
			val, err := r.resolve(name, vars)
			if err != nil {
				return nil, err
			}
			if val == "" {
				continue
			}
			out = append(out, val)
			continue
		}
		val, err := r.renderString(arg, vars)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// renderEnv renders keys and values, dropping pairs where either side
// comes out empty so optional variables do not leave husk entries.
func (r *Renderer) renderEnv(in map[string]string, vars map[string]any) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key, err := r.renderString(k, vars)
		if err != nil {
			return nil, err
		}
		val, err := r.renderString(v, vars)
		if err != nil {
			return nil, err
		}
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// resolve looks up a placeholder name: caller variables first, then
// builtins.
func (r *Renderer) resolve(name string, vars map[string]any) (string, error) {
	if val, ok := vars[name]; ok {
		return formatValue(name, val)
	}
	switch name {
	case builtinOS:
		return r.platform(), nil
	case builtinArch:
		return r.arch(), nil
	case builtinHomeDir:
		if r.HomeDir != "" {
			return r.HomeDir, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", &types.Error{Kind: types.ErrKindIo, Msg: "resolve home directory", Err: err}
		}
		return home, nil
	case builtinConfigDir:
		if r.ConfigDir != "" {
			return r.ConfigDir, nil
		}
		dir, err := paths.ConfigDir()
		if err != nil {
			return "", &types.Error{Kind: types.ErrKindIo, Msg: "resolve configuration directory", Err: err}
		}
		return dir, nil
	}
	return "", undefinedVar(name)
}

func (r *Renderer) platform() string {
	if r.Platform != "" {
		return r.Platform
	}
	switch runtime.GOOS {
	case "windows":
		return "windows"
	case "darwin":
		return "macos"
	default:
		return "linux"
	}
}

func (r *Renderer) arch() string {
	if r.Arch != "" {
		return r.Arch
	}
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "arm64":
		return "arm64"
	default:
		return runtime.GOARCH
	}
}

func undefinedVar(name string) error {
	return &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("undefined variable %q", name)}
}

// lonePlaceholder reports whether arg is exactly one {{name}} and
// returns the name.
func lonePlaceholder(arg string) (string, bool) {
	m := placeholderRe.FindStringSubmatchIndex(arg)
	if m == nil || m[0] != 0 || m[1] != len(arg) {
		return "", false
	}
	return arg[m[2]:m[3]], true
}

// formatValue renders a variable value as the string that replaces its
// placeholder. Arrays join with a single space; lone-placeholder
// arguments bypass this via asList.
func formatValue(name string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case []string:
		return strings.Join(x, " "), nil
	case []any:
		list, ok := asList(x)
		if !ok {
			return "", &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q has non-string array elements", name)}
		}
		return strings.Join(list, " "), nil
	case nil:
		return "", &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q is null", name)}
	}
	return "", &types.Error{Kind: types.ErrKindValidation, Msg: fmt.Sprintf("variable %q has unsupported type %T", name, v)}
}

// asList extracts a string slice from array-typed values.
func asList(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return x, true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
