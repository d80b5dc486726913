package bulk

import (
	"context"
	"sync"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/config/selector"
	"github.com/joshuapare/mcpkit/config/tx"
	"github.com/joshuapare/mcpkit/config/verify"
)

// Outcome classifies what happened to one matched entry.
type Outcome int

const (
	// OutcomePlanned means the entry's plan was computed (dry run).
	OutcomePlanned Outcome = iota

	// OutcomeApplied means the entry's transaction committed.
	OutcomeApplied

	// OutcomeSkipped means the entry was never attempted because the run
	// stopped early.
	OutcomeSkipped

	// OutcomeFailed means planning or the transaction failed.
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePlanned:
		return "planned"
	case OutcomeApplied:
		return "applied"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EntryOp is the mutation applied to each matched entry. Use RemoveOp or
// UpdateOp to build one.
type EntryOp struct {
	remove bool
	mutate plan.Mutator
}

// RemoveOp returns the op that deletes each matched entry.
func RemoveOp() EntryOp {
	return EntryOp{remove: true}
}

// UpdateOp returns the op that applies m to each matched entry.
func UpdateOp(m plan.Mutator) EntryOp {
	return EntryOp{mutate: m}
}

func (op EntryOp) planOp(name string) plan.Operation {
	if op.remove {
		return plan.RemoveOne(name)
	}
	return plan.UpdateOne(name, op.mutate)
}

// Policy controls how a bulk run schedules and survives failures.
type Policy struct {
	// ContinueOnError records failures and keeps going instead of
	// stopping at the first failed entry.
	ContinueOnError bool

	// DryRun computes plans only. Nothing is written, no lock is taken.
	DryRun bool

	// Parallelism bounds the planning workers. Values below 2 plan
	// serially. Commits are serialized regardless.
	Parallelism int
}

// Failure pairs a matched entry with the error that stopped it.
type Failure struct {
	Name string
	Err  error
}

// Result reports a bulk run. The three name lists are disjoint and
// ordered by match order; every matched entry appears in exactly one.
type Result struct {
	// Applied lists entries whose transactions committed.
	Applied []string

	// Skipped lists entries never attempted because the run stopped.
	Skipped []string

	// Failed lists entries whose planning or transaction failed.
	Failed []Failure

	// Plans holds the computed per-entry plans on a dry run, in match
	// order, with a nil slot for entries whose planning failed.
	Plans []*plan.Plan

	// Issues holds run-scope findings such as a selector matching
	// nothing.
	Issues verify.Result
}

// OK reports whether no entry failed.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// Runner executes bulk operations through a shared transaction executor.
type Runner struct {
	// Exec commits the per-entry transactions. Required for wet runs.
	Exec *tx.Executor

	// Verify configures validation of proposed entries during planning.
	Verify verify.Options

	// Progress, when set, is called once per matched entry in match
	// order as its outcome becomes final.
	Progress func(name string, outcome Outcome, err error)
}

// NewRunner returns a runner committing through exec.
func NewRunner(exec *tx.Executor) *Runner {
	return &Runner{Exec: exec}
}

func (r *Runner) report(name string, outcome Outcome, err error) {
	if r.Progress != nil {
		r.Progress(name, outcome, err)
	}
}

// entrySlot carries one matched entry's planning result into the ordered
// commit phase.
type entrySlot struct {
	name string
	plan *plan.Plan
	err  error
}

// Run resolves the selector against doc and applies op to every match.
//
// The returned result lists every matched entry exactly once, in match
// order. A selector that matches nothing yields an empty result with a
// warning, not an error. Run itself returns an error only for failures
// outside any single entry: a malformed selector or a cancelled context.
func (r *Runner) Run(ctx context.Context, doc *config.Document, selectorSrc string, op EntryOp, pol Policy) (*Result, error) {
	pat, err := selector.Compile(selectorSrc)
	if err != nil {
		return nil, err
	}
	matches := pat.Select(doc.Names())

	res := &Result{}
	if len(matches) == 0 {
		res.Issues.AddWarning("selector", "no entries matched %q", selectorSrc)
		return res, nil
	}

	// Planning is read-only against the starting snapshot, so it can run
	// with bounded parallelism. Slots keep match order intact.
	slots := planAll(doc, matches, op, r.Verify, pol.Parallelism)

	if pol.DryRun {
		res.Plans = make([]*plan.Plan, len(slots))
		for i, sl := range slots {
			if sl.err != nil {
				res.Failed = append(res.Failed, Failure{Name: sl.name, Err: sl.err})
				r.report(sl.name, OutcomeFailed, sl.err)
				continue
			}
			res.Plans[i] = sl.plan
			r.report(sl.name, OutcomePlanned, nil)
		}
		return res, nil
	}

	// Commits run strictly in match order. Every commit moves the live
	// document forward, so each entry re-plans against the latest state;
	// the parallel phase above still surfaces planning failures before
	// the first write.
	current := doc
	stopped := false
	for i, sl := range slots {
		if stopped {
			res.Skipped = append(res.Skipped, sl.name)
			r.report(sl.name, OutcomeSkipped, nil)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Skipped = append(res.Skipped, sl.name)
			r.report(sl.name, OutcomeSkipped, nil)
			for _, rest := range slots[i+1:] {
				res.Skipped = append(res.Skipped, rest.name)
				r.report(rest.name, OutcomeSkipped, nil)
			}
			return res, err
		}

		fail := func(ferr error) {
			res.Failed = append(res.Failed, Failure{Name: sl.name, Err: ferr})
			r.report(sl.name, OutcomeFailed, ferr)
			if !pol.ContinueOnError {
				stopped = true
			}
		}

		if sl.err != nil {
			fail(sl.err)
			continue
		}

		p := sl.plan
		if current != doc {
			replanned, perr := plan.NewPlanner(current, r.Verify).Plan(op.planOp(sl.name))
			if perr != nil {
				fail(perr)
				continue
			}
			p = replanned
		}
		p.Approve()

		txRes, applyErr := r.Exec.Apply(ctx, current, p)
		if applyErr != nil {
			fail(applyErr)
			continue
		}
		if txRes.Document != nil {
			current = txRes.Document
		}
		res.Applied = append(res.Applied, sl.name)
		r.report(sl.name, OutcomeApplied, nil)
	}
	return res, nil
}

// planAll computes one plan per matched entry against the same snapshot,
// with at most workers goroutines.
func planAll(doc *config.Document, matches []string, op EntryOp, opts verify.Options, workers int) []entrySlot {
	slots := make([]entrySlot, len(matches))
	for i, name := range matches {
		slots[i].name = name
	}

	if workers < 2 {
		for i := range slots {
			pl, err := plan.NewPlanner(doc, opts).Plan(op.planOp(slots[i].name))
			slots[i].plan, slots[i].err = pl, err
		}
		return slots
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := range slots {
		i := i
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			pl, err := plan.NewPlanner(doc, opts).Plan(op.planOp(slots[i].name))
			slots[i].plan, slots[i].err = pl, err
		}()
	}
	wg.Wait()
	return slots
}
