package tx

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/backup"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/internal/flock"
	"github.com/joshuapare/mcpkit/internal/writer"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// State identifies where a transaction is in its lifecycle.
type State int

const (
	// StatePlanned means the plan was accepted but nothing has happened.
	StatePlanned State = iota

	// StateBackedUp means the pre-change snapshot exists.
	StateBackedUp

	// StateApplying means diffs are being applied to the in-memory copy.
	StateApplying

	// StateValidated means the mutated document passed validation.
	StateValidated

	// StateCommitted means the file was atomically replaced.
	StateCommitted

	// StateRolledBack means the transaction aborted; the file on disk was
	// never modified.
	StateRolledBack
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateBackedUp:
		return "backed-up"
	case StateApplying:
		return "applying"
	case StateValidated:
		return "validated"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Result reports the outcome of one transaction.
type Result struct {
	// ID uniquely identifies the transaction run.
	ID string

	// State is the terminal state the transaction reached.
	State State

	// Backup is the snapshot taken before applying. Zero when the
	// transaction never got that far or the plan was empty.
	Backup backup.Entry

	// Document is the committed document, reloaded from disk, nil unless
	// State is StateCommitted.
	Document *config.Document

	// Validation holds the document-level findings from the validate
	// step.
	Validation verify.Result
}

// Executor applies approved plans. It is safe for concurrent use; every
// commit runs alone behind a process-wide mutex plus an advisory file
// lock.
type Executor struct {
	// Store receives the pre-change snapshots. Nil disables
	// snapshotting entirely; callers opt into that explicitly.
	Store *backup.Store

	// Verify configures document validation before commit.
	Verify verify.Options

	// BackupLabel tags the automatic snapshots; empty means "auto".
	BackupLabel string

	mu sync.Mutex
}

// NewExecutor returns an executor snapshotting into store.
func NewExecutor(store *backup.Store) *Executor {
	return &Executor{Store: store}
}

func (e *Executor) label() string {
	if e.BackupLabel == "" {
		return "auto"
	}
	return e.BackupLabel
}

// Apply carries an approved plan through the transaction lifecycle
// against the document's backing file.
//
// The returned result always reports the state reached, including on
// error. An empty plan commits trivially without touching disk or taking
// a backup. The context is observed before the snapshot is taken and
// never after, so cancellation can not produce a half-applied file.
func (e *Executor) Apply(ctx context.Context, doc *config.Document, p *plan.Plan) (*Result, error) {
	res := &Result{ID: uuid.NewString(), State: StatePlanned}

	if p == nil || !p.Approved {
		return res, types.ErrNotApproved
	}
	if p.IsEmpty() {
		res.State = StateCommitted
		res.Document = doc
		return res, nil
	}
	path := doc.Path()
	if path == "" {
		return res, &types.Error{Kind: types.ErrKindState, Msg: "document has no backing file"}
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lk, err := flock.Acquire(path)
	if err != nil {
		return res, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("lock %s", path), Err: err}
	}
	defer lk.Release()

	// First conflict check: the plan must still describe the file we are
	// about to replace.
	live, err := config.StampFile(path)
	if err != nil {
		return res, err
	}
	if !live.Equal(p.Base) {
		res.State = StateRolledBack
		return res, types.ErrConflict
	}

	// Snapshot before anything else. A backup failure aborts the whole
	// transaction.
	if e.Store != nil {
		entry, err := e.Store.Create(doc, e.label())
		if err != nil {
			res.State = StateRolledBack
			return res, err
		}
		res.Backup = entry
	}
	res.State = StateBackedUp

	// Apply every diff to an in-memory copy. The file stays untouched.
	res.State = StateApplying
	work := doc.Clone()
	for _, d := range p.Diffs {
		switch d.Kind {
		case plan.DiffAdd, plan.DiffUpdate:
			if d.After == nil {
				res.State = StateRolledBack
				return res, &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("diff for %q has no after state", d.Name)}
			}
			if err := work.Set(d.Name, *d.After); err != nil {
				res.State = StateRolledBack
				return res, err
			}
		case plan.DiffRemove:
			if _, err := work.Remove(d.Name); err != nil {
				res.State = StateRolledBack
				return res, err
			}
		}
	}

	if len(p.Order) > 0 {
		if err := work.Reorder(p.Order); err != nil {
			res.State = StateRolledBack
			return res, err
		}
	}

	// Validate the combined outcome, not just individual entries.
	res.Validation = verify.CheckDocument(work, e.Verify)
	if !res.Validation.OK() {
		res.State = StateRolledBack
		return res, types.ErrValidationFailed
	}
	res.State = StateValidated

	// Second conflict check right before the write. The advisory lock
	// excludes cooperating processes; this catches everything else that
	// modified the file while we were applying and validating.
	live, err = config.StampFile(path)
	if err != nil {
		res.State = StateRolledBack
		return res, err
	}
	if !live.Equal(p.Base) {
		res.State = StateRolledBack
		return res, types.ErrConflict
	}

	fw := writer.FileWriter{Path: path}
	if err := fw.WriteConfig(work.Bytes()); err != nil {
		res.State = StateRolledBack
		return res, &types.Error{Kind: types.ErrKindIo, Msg: fmt.Sprintf("write %s", path), Err: err}
	}

	committed, err := config.Load(path)
	if err != nil {
		// The write already landed; report the commit but surface the
		// reload failure.
		res.State = StateCommitted
		return res, err
	}
	res.Document = committed
	res.State = StateCommitted
	return res, nil
}
