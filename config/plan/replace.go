package plan

import (
	"slices"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/verify"
)

// MergeMode selects how PlanMerge treats names that exist on both sides.
type MergeMode int

const (
	// MergeSkip keeps the existing entry and records a warning.
	MergeSkip MergeMode = iota

	// MergeOverwrite replaces the existing entry with the incoming one.
	MergeOverwrite
)

// String returns a human-readable representation of the merge mode.
func (m MergeMode) String() string {
	switch m {
	case MergeSkip:
		return "skip"
	case MergeOverwrite:
		return "overwrite"
	default:
		return "unknown"
	}
}

// PlanReplace computes the diffs that make the planner's document hold
// exactly the entries of target: adds and updates in target declaration
// order, then removes for names target lacks, in the current document's
// declaration order. Entries already identical on both sides produce no
// diff. The plan carries target's declaration order, so applying it
// reproduces the target's entry order even for names that were removed
// and re-added. Fields outside the entry map are not part of the plan
// either way; they stay as they are in the live document.
func (pl *Planner) PlanReplace(target *config.Document) (*Plan, error) {
	p := &Plan{Base: pl.doc.Stamp()}

	inTarget := make(map[string]bool)
	target.Each(func(name string, after config.Server) bool {
		inTarget[name] = true
		before, exists := pl.doc.Get(name)
		switch {
		case !exists:
			a := after.Clone()
			p.Diffs = append(p.Diffs, Diff{
				Name:       name,
				Kind:       DiffAdd,
				After:      &a,
				Validation: verify.CheckServer(a, pl.opts),
			})
		case !before.Equal(after):
			a := after.Clone()
			p.Diffs = append(p.Diffs, Diff{
				Name:       name,
				Kind:       DiffUpdate,
				Before:     &before,
				After:      &a,
				Validation: verify.CheckServer(a, pl.opts),
			})
		}
		return true
	})

	for _, name := range pl.doc.Names() {
		if inTarget[name] {
			continue
		}
		before, _ := pl.doc.Get(name)
		p.Diffs = append(p.Diffs, Diff{Name: name, Kind: DiffRemove, Before: &before})
	}

	p.Order = target.Names()
	if len(p.Diffs) == 0 && slices.Equal(pl.doc.Names(), p.Order) {
		p.Order = nil
		p.Issues.AddWarning("", "documents are already identical")
	}
	return p, nil
}

// PlanMerge computes the diffs that bring incoming's entries into the
// planner's document, in incoming declaration order. New names become
// adds; existing names follow mode. Nothing is ever removed by a merge.
func (pl *Planner) PlanMerge(incoming *config.Document, mode MergeMode) (*Plan, error) {
	p := &Plan{Base: pl.doc.Stamp()}

	incoming.Each(func(name string, after config.Server) bool {
		before, exists := pl.doc.Get(name)
		switch {
		case !exists:
			a := after.Clone()
			p.Diffs = append(p.Diffs, Diff{
				Name:       name,
				Kind:       DiffAdd,
				After:      &a,
				Validation: verify.CheckServer(a, pl.opts),
			})
		case mode == MergeSkip:
			p.Issues.AddWarning(name, "entry already exists, keeping the current one")
		case !before.Equal(after):
			a := after.Clone()
			p.Diffs = append(p.Diffs, Diff{
				Name:       name,
				Kind:       DiffUpdate,
				Before:     &before,
				After:      &a,
				Validation: verify.CheckServer(a, pl.opts),
			})
		}
		return true
	})

	if p.IsEmpty() && len(p.Issues.Issues) == 0 {
		p.Issues.AddWarning("", "nothing to merge")
	}
	return p, nil
}
