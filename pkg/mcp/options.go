package mcp

import (
	"path/filepath"

	"github.com/joshuapare/mcpkit/config/backup"
	"github.com/joshuapare/mcpkit/config/bulk"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/config/tx"
	"github.com/joshuapare/mcpkit/config/verify"
	"github.com/joshuapare/mcpkit/internal/paths"
)

// Options controls write operations. The zero value (and nil) means:
// snapshot before changing, apply for real, stop at the first bulk
// failure, validate with default rules.
type Options struct {
	// Verify configures validation. The zero value applies the
	// standard rules without deep checks.
	Verify verify.Options

	// BackupDir overrides the snapshot directory. Empty means a
	// "backups" directory next to the document.
	BackupDir string

	// BackupLabel tags automatic snapshots; empty means "auto".
	BackupLabel string

	// NoBackup skips the pre-change snapshot entirely.
	NoBackup bool

	// DryRun computes and returns plans without locking, snapshotting
	// or writing.
	DryRun bool

	// ContinueOnError keeps bulk runs going past per-entry failures.
	ContinueOnError bool

	// Parallelism bounds concurrent plan computation in bulk runs.
	// Zero or one plans serially.
	Parallelism int

	// Progress, when set, observes each bulk entry as its outcome is
	// decided.
	Progress func(name string, outcome bulk.Outcome, err error)
}

func (o *Options) orDefaults() *Options {
	if o == nil {
		return &Options{}
	}
	return o
}

// store returns the snapshot store for a document path, or nil when
// backups are disabled.
func (o *Options) store(docPath string) *backup.Store {
	if o.NoBackup {
		return nil
	}
	dir := o.BackupDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(docPath), paths.BackupDirName)
	}
	return backup.NewStore(dir)
}

func (o *Options) executor(docPath string) *tx.Executor {
	return &tx.Executor{
		Store:       o.store(docPath),
		Verify:      o.Verify,
		BackupLabel: o.BackupLabel,
	}
}

func (o *Options) runner(docPath string) *bulk.Runner {
	return &bulk.Runner{
		Exec:     o.executor(docPath),
		Verify:   o.Verify,
		Progress: o.Progress,
	}
}

func (o *Options) policy() bulk.Policy {
	return bulk.Policy{
		ContinueOnError: o.ContinueOnError,
		DryRun:          o.DryRun,
		Parallelism:     o.Parallelism,
	}
}

// Result is what a single-entry write returns: the computed plan, and
// the transaction outcome unless this was a dry run.
type Result struct {
	// Plan is the change that was (or would be) applied.
	Plan *plan.Plan

	// Tx reports the transaction; nil on dry runs. On errors it
	// carries the state reached and the validation outcome.
	Tx *tx.Result
}

// Applied reports whether the change reached the file.
func (r *Result) Applied() bool {
	return r != nil && r.Tx != nil && r.Tx.State == tx.StateCommitted
}
