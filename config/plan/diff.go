package plan

import (
	"slices"
	"strings"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/redact"
	"github.com/joshuapare/mcpkit/config/verify"
)

// DiffKind represents the kind of change a Diff proposes for one entry.
type DiffKind int

const (
	// DiffAdd means the entry does not exist yet and will be created.
	DiffAdd DiffKind = iota

	// DiffUpdate means the entry exists and its content will change.
	DiffUpdate

	// DiffRemove means the entry exists and will be deleted.
	DiffRemove
)

// String returns a human-readable representation of the diff kind.
func (k DiffKind) String() string {
	switch k {
	case DiffAdd:
		return "add"
	case DiffUpdate:
		return "update"
	case DiffRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Diff is one entry's proposed change. Before is nil for DiffAdd and After
// is nil for DiffRemove. Both hold unmasked values; use the Masked
// projections or Preview when showing a diff to a person.
type Diff struct {
	// Name is the entry the change applies to.
	Name string

	// Kind is the change category.
	Kind DiffKind

	// Before is the entry as it exists in the base document.
	Before *config.Server

	// After is the entry as it would exist after the change.
	After *config.Server

	// Validation holds the issues found in After. Remove diffs carry an
	// empty result.
	Validation verify.Result
}

// Unchanged reports whether an update diff proposes no actual change.
func (d Diff) Unchanged() bool {
	return d.Kind == DiffUpdate && d.Before != nil && d.After != nil && d.Before.Equal(*d.After)
}

// MaskedBefore returns a display-safe copy of Before with sensitive env
// values masked, or nil if there is no before state.
func (d Diff) MaskedBefore() *config.Server {
	return maskedServer(d.Before)
}

// MaskedAfter returns a display-safe copy of After with sensitive env
// values masked, or nil if there is no after state.
func (d Diff) MaskedAfter() *config.Server {
	return maskedServer(d.After)
}

// Preview renders the diff as indented text lines suitable for terminal
// output. Sensitive env values are masked and removed env values are not
// shown at all.
func (d Diff) Preview() []string {
	switch d.Kind {
	case DiffAdd:
		after := d.MaskedAfter()
		lines := []string{"+ " + d.Name}
		lines = append(lines, "    command: "+after.Command)
		if len(after.Args) > 0 {
			lines = append(lines, "    args: "+strings.Join(after.Args, " "))
		}
		envKeys := make([]string, 0, len(after.Env))
		for k := range after.Env {
			envKeys = append(envKeys, k)
		}
		slices.Sort(envKeys)
		for _, k := range envKeys {
			lines = append(lines, "    env."+k+"="+after.Env[k])
		}
		return lines

	case DiffRemove:
		return []string{"- " + d.Name}

	case DiffUpdate:
		before, after := d.MaskedBefore(), d.MaskedAfter()
		lines := []string{"~ " + d.Name}
		if before.Command != after.Command {
			lines = append(lines, "    command: "+before.Command+" => "+after.Command)
		}
		if !slices.Equal(before.Args, after.Args) {
			lines = append(lines, "    args: ["+strings.Join(before.Args, " ")+"] => ["+strings.Join(after.Args, " ")+"]")
		}
		for _, k := range envKeyUnion(before.Env, after.Env) {
			oldVal, hadOld := before.Env[k]
			newVal, hasNew := after.Env[k]
			switch {
			case !hadOld:
				lines = append(lines, "    + env."+k+"="+newVal)
			case !hasNew:
				lines = append(lines, "    - env."+k)
			case oldVal != newVal:
				lines = append(lines, "    ~ env."+k+"="+newVal)
			}
		}
		if len(lines) == 1 {
			lines = append(lines, "    (no changes)")
		}
		return lines
	}
	return nil
}

// Plan is an ordered set of per-entry diffs computed against one document
// snapshot. Diffs appear in the order their entries are declared in the
// document; a plan is never reordered after it is produced.
type Plan struct {
	// Diffs are the per-entry changes, in document declaration order.
	Diffs []Diff

	// Base is the stamp of the document the plan was computed from. The
	// executor compares it against the live file to detect concurrent
	// modification.
	Base config.Stamp

	// Issues holds plan-scope findings that belong to no single entry,
	// such as a selector matching nothing.
	Issues verify.Result

	// Order, when non-empty, is the entry declaration order the resulting
	// document must have after the diffs are applied. Whole-document
	// operations such as a snapshot restore set it; entry-level plans
	// leave it empty and keep the live document's order.
	Order []string

	// Approved records that a caller confirmed the plan. Executors refuse
	// plans that were never approved.
	Approved bool
}

// Approve marks the plan as confirmed by the caller.
func (p *Plan) Approve() {
	p.Approved = true
}

// Size returns the number of per-entry changes in the plan.
func (p *Plan) Size() int {
	return len(p.Diffs)
}

// IsEmpty reports whether the plan changes nothing, entries and order
// both.
func (p *Plan) IsEmpty() bool {
	return len(p.Diffs) == 0 && len(p.Order) == 0
}

// Validation merges the plan-scope issues with every diff's entry issues
// into one result. Entry issues keep their diff's name as the tag.
func (p *Plan) Validation() verify.Result {
	var out verify.Result
	out.Issues = append(out.Issues, p.Issues.Issues...)
	for _, d := range p.Diffs {
		out.Merge(d.Name, d.Validation)
	}
	return out
}

// OK reports whether neither the plan nor any diff carries an error-level
// issue. Warnings do not affect it.
func (p *Plan) OK() bool {
	v := p.Validation()
	return v.OK()
}

// Preview renders every diff in order, one block after another. A plan
// that only changes entry declaration order says so instead of rendering
// nothing.
func (p *Plan) Preview() []string {
	var lines []string
	for _, d := range p.Diffs {
		lines = append(lines, d.Preview()...)
	}
	if lines == nil && len(p.Order) > 0 {
		lines = append(lines, "~ entry order: "+strings.Join(p.Order, ", "))
	}
	return lines
}

func maskedServer(s *config.Server) *config.Server {
	if s == nil {
		return nil
	}
	out := s.Clone()
	out.Env = redact.MaskEnv(out.Env)
	return &out
}

func envKeyUnion(a, b map[string]string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
