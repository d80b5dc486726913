package plan

import (
	"fmt"
	"strings"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/selector"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// Planner computes plans against one document snapshot. The document is
// never modified; every diff is built from deep copies.
type Planner struct {
	doc  *config.Document
	opts verify.Options
}

// NewPlanner returns a planner bound to doc. Proposed entries are
// validated with opts.
func NewPlanner(doc *config.Document, opts verify.Options) *Planner {
	return &Planner{doc: doc, opts: opts}
}

// Document returns the snapshot the planner computes against.
func (pl *Planner) Document() *config.Document {
	return pl.doc
}

// Plan resolves op against the document and returns the resulting change
// plan. Selector and mutator failures abort the whole plan; validation
// findings do not, they ride along on the diffs for the caller to judge.
func (pl *Planner) Plan(op Operation) (*Plan, error) {
	switch op.Kind {
	case OpAdd:
		return pl.planAdd(op)
	case OpUpdate:
		return pl.planUpdate(op)
	case OpRemove:
		return pl.planRemove(op)
	case OpRemoveMany:
		return pl.planRemoveMany(op)
	case OpUpdateMany:
		return pl.planUpdateMany(op)
	default:
		return nil, &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("unknown operation kind %d", op.Kind)}
	}
}

func (pl *Planner) planAdd(op Operation) (*Plan, error) {
	name := op.Name
	if strings.TrimSpace(name) == "" {
		return nil, &types.Error{Kind: types.ErrKindValidation, Msg: "entry name must not be empty"}
	}
	if pl.doc.Has(name) {
		return nil, &types.Error{Kind: types.ErrKindExists, Msg: fmt.Sprintf("entry %q already exists", name)}
	}
	after := op.Server.Clone()
	d := Diff{
		Name:       name,
		Kind:       DiffAdd,
		After:      &after,
		Validation: verify.CheckServer(after, pl.opts),
	}
	return &Plan{Diffs: []Diff{d}, Base: pl.doc.Stamp()}, nil
}

func (pl *Planner) planUpdate(op Operation) (*Plan, error) {
	before, ok := pl.doc.Get(op.Name)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", op.Name)}
	}
	d, err := pl.updateDiff(op.Name, before, op.Mutate)
	if err != nil {
		return nil, err
	}
	return &Plan{Diffs: []Diff{d}, Base: pl.doc.Stamp()}, nil
}

func (pl *Planner) planRemove(op Operation) (*Plan, error) {
	before, ok := pl.doc.Get(op.Name)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found", op.Name)}
	}
	d := Diff{Name: op.Name, Kind: DiffRemove, Before: &before}
	return &Plan{Diffs: []Diff{d}, Base: pl.doc.Stamp()}, nil
}

func (pl *Planner) planRemoveMany(op Operation) (*Plan, error) {
	names, err := pl.matched(op.Selector)
	if err != nil {
		return nil, err
	}
	p := &Plan{Base: pl.doc.Stamp()}
	if len(names) == 0 {
		p.Issues.AddWarning("selector", "no entries matched %q", op.Selector)
		return p, nil
	}
	for _, name := range names {
		before, _ := pl.doc.Get(name)
		p.Diffs = append(p.Diffs, Diff{Name: name, Kind: DiffRemove, Before: &before})
	}
	return p, nil
}

func (pl *Planner) planUpdateMany(op Operation) (*Plan, error) {
	names, err := pl.matched(op.Selector)
	if err != nil {
		return nil, err
	}
	p := &Plan{Base: pl.doc.Stamp()}
	if len(names) == 0 {
		p.Issues.AddWarning("selector", "no entries matched %q", op.Selector)
		return p, nil
	}
	for _, name := range names {
		before, _ := pl.doc.Get(name)
		d, err := pl.updateDiff(name, before, op.Mutate)
		if err != nil {
			return nil, err
		}
		p.Diffs = append(p.Diffs, d)
	}
	return p, nil
}

// updateDiff runs the mutator over a copy of before and validates the
// result. The returned diff owns both copies.
func (pl *Planner) updateDiff(name string, before config.Server, m Mutator) (Diff, error) {
	if m == nil {
		return Diff{}, &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("update of %q has no mutator", name)}
	}
	after, err := m(name, before.Clone())
	if err != nil {
		return Diff{}, fmt.Errorf("mutate %q: %w", name, err)
	}
	return Diff{
		Name:       name,
		Kind:       DiffUpdate,
		Before:     &before,
		After:      &after,
		Validation: verify.CheckServer(after, pl.opts),
	}, nil
}

// matched resolves a selector against the document in declaration order.
func (pl *Planner) matched(src string) ([]string, error) {
	pat, err := selector.Compile(src)
	if err != nil {
		return nil, err
	}
	return pat.Select(pl.doc.Names()), nil
}
