package verify

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/joshuapare/mcpkit/config"
)

// Severity ranks an issue. Errors block a commit; warnings do not.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String implements the Stringer interface for Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Issue is a single finding.
type Issue struct {
	Severity Severity
	Entry    string // entry name for document-level runs, "" otherwise
	Field    string // "command", "args[2]", "env.FOO", "" for entry scope
	Message  string
}

// String renders the issue for terminal and log output.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Severity.String())
	if i.Entry != "" {
		b.WriteString(" [" + i.Entry + "]")
	}
	if i.Field != "" {
		b.WriteString(" " + i.Field)
	}
	b.WriteString(": " + i.Message)
	return b.String()
}

// Result accumulates issues. The zero value is a passing result.
type Result struct {
	Issues []Issue
}

// OK reports whether the result carries no Error-severity issues.
// Warnings do not fail a result.
func (r *Result) OK() bool {
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the Error-severity issues.
func (r *Result) Errors() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return out
}

// Warnings returns only the Warning-severity issues.
func (r *Result) Warnings() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			out = append(out, is)
		}
	}
	return out
}

// AddError appends an Error-severity issue.
func (r *Result) AddError(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityError, Field: field, Message: fmt.Sprintf(format, args...)})
}

// AddWarning appends a Warning-severity issue.
func (r *Result) AddWarning(field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: SeverityWarning, Field: field, Message: fmt.Sprintf(format, args...)})
}

// Merge appends another result's issues, tagging them with the entry name.
func (r *Result) Merge(entry string, other Result) {
	for _, is := range other.Issues {
		is.Entry = entry
		r.Issues = append(r.Issues, is)
	}
}

// Options controls optional checks.
type Options struct {
	// Deep enables filesystem and PATH lookups (command resolution,
	// path-looking arguments, env values naming paths). Off by default.
	Deep bool
}

var (
	placeholderRe = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	envNameRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

const maxReasonableArgs = 20

// CheckServer validates a single entry. Issues accumulate; the check never
// stops at the first finding.
func CheckServer(s config.Server, opts Options) Result {
	var r Result

	if strings.TrimSpace(s.Command) == "" {
		r.AddError("command", "command must not be empty")
	} else if placeholderRe.MatchString(s.Command) {
		r.AddError("command", "unresolved template variable %s", placeholderRe.FindString(s.Command))
	}

	for i, arg := range s.Args {
		field := fmt.Sprintf("args[%d]", i)
		if placeholderRe.MatchString(arg) {
			r.AddError(field, "unresolved template variable %s", placeholderRe.FindString(arg))
		}
		if strings.Contains(arg, " ") {
			r.AddWarning(field, "argument contains spaces; quoting is the launcher's job, not the argument's")
		}
		if n, err := strconv.Atoi(arg); err == nil && n > 0 && n < 1024 {
			r.AddWarning(field, "port %d is privileged and usually needs elevated permissions", n)
		}
	}
	if len(s.Args) > maxReasonableArgs {
		r.AddWarning("args", "%d arguments; consider a config file for this server", len(s.Args))
	}

	for _, key := range sortedKeys(s.Env) {
		field := "env." + key
		if !envNameRe.MatchString(key) {
			r.AddError(field, "invalid environment variable name")
		}
		val := s.Env[key]
		if placeholderRe.MatchString(val) {
			r.AddError(field, "unresolved template variable %s", placeholderRe.FindString(val))
		}
		if val == "" {
			r.AddWarning(field, "empty value")
		}
	}

	if opts.Deep {
		deepCheckServer(s, &r)
	}
	return r
}

// CheckDocument validates the whole document: per-entry checks plus the
// structural checks that only make sense across entries.
func CheckDocument(doc *config.Document, opts Options) Result {
	var r Result

	seen := make(map[string]bool)
	for _, name := range doc.Names() {
		if name == "" {
			r.Issues = append(r.Issues, Issue{Severity: SeverityError, Message: "entry name must not be empty"})
			continue
		}
		if seen[name] {
			r.Issues = append(r.Issues, Issue{Severity: SeverityError, Entry: name, Message: "duplicate entry name"})
			continue
		}
		seen[name] = true

		s, ok := doc.Get(name)
		if !ok {
			continue
		}
		r.Merge(name, CheckServer(s, opts))
	}
	return r
}

// deepCheckServer runs the opt-in filesystem checks.
func deepCheckServer(s config.Server, r *Result) {
	if cmd := strings.TrimSpace(s.Command); cmd != "" {
		if filepath.IsAbs(cmd) {
			if _, err := os.Stat(cmd); err != nil {
				r.AddError("command", "command %q does not exist", cmd)
			}
		} else if _, err := exec.LookPath(cmd); err != nil {
			r.AddError("command", "command %q not found in PATH", cmd)
		}
	}

	for i, arg := range s.Args {
		if !looksLikePath(arg) {
			continue
		}
		if _, err := os.Stat(arg); err != nil {
			r.AddWarning(fmt.Sprintf("args[%d]", i), "path %q does not exist", arg)
		}
	}

	for _, key := range sortedKeys(s.Env) {
		if !namesPath(key) {
			continue
		}
		val := s.Env[key]
		if val == "" {
			continue
		}
		if _, err := os.Stat(val); err != nil {
			r.AddWarning("env."+key, "path %q does not exist", val)
		}
	}
}

// looksLikePath reports whether an argument plausibly names a filesystem
// location. Flags and URLs are excluded.
func looksLikePath(arg string) bool {
	if arg == "" || strings.HasPrefix(arg, "-") {
		return false
	}
	if strings.Contains(arg, "://") {
		return false
	}
	return strings.HasPrefix(arg, "/") ||
		strings.HasPrefix(arg, "./") ||
		strings.HasPrefix(arg, "../") ||
		strings.HasPrefix(arg, "~/") ||
		(len(arg) > 2 && arg[1] == ':' && (arg[2] == '\\' || arg[2] == '/'))
}

// namesPath reports whether an env key conventionally points at a path.
// The process PATH variable itself is a search list, not a single path.
func namesPath(key string) bool {
	if key == "PATH" {
		return false
	}
	up := strings.ToUpper(key)
	return strings.HasSuffix(up, "PATH") ||
		strings.HasSuffix(up, "DIR") ||
		strings.HasSuffix(up, "FILE")
}

// sortedKeys keeps issue order deterministic regardless of map iteration.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
