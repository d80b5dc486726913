package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joshuapare/mcpkit/config"
	"github.com/joshuapare/mcpkit/config/backup"
	"github.com/joshuapare/mcpkit/config/plan"
	"github.com/joshuapare/mcpkit/internal/paths"
	"github.com/joshuapare/mcpkit/pkg/types"
)

// Backups returns the snapshot store for a document path, honoring the
// BackupDir override. Reads always go through a store even when opts
// disables automatic snapshots.
func Backups(path string, opts *Options) *backup.Store {
	opts = opts.orDefaults()
	dir := opts.BackupDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(path), paths.BackupDirName)
	}
	return backup.NewStore(dir)
}

// Restore brings the document back to the state captured by the named
// snapshot. The restore runs as a regular transaction, so the current
// document is snapshotted first and the swap is atomic. Fields outside
// the entry map are left as they are; the snapshot file keeps the full
// original bytes for manual recovery.
//
// ref resolves like backup.Store.Find: exact snapshot name first, then
// unique substring.
func Restore(ctx context.Context, path, ref string, opts *Options) (*Result, error) {
	opts = opts.orDefaults()
	snap, err := loadSnapshot(path, ref, opts)
	if err != nil {
		return nil, err
	}
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	p, err := plan.NewPlanner(doc, opts.Verify).PlanReplace(snap)
	if err != nil {
		return nil, err
	}
	return finishRestore(ctx, path, doc, p, opts)
}

// RestoreEntry restores a single entry from the named snapshot, leaving
// every other entry alone. The entry must exist in the snapshot; it may
// or may not still exist in the live document.
func RestoreEntry(ctx context.Context, path, ref, name string, opts *Options) (*Result, error) {
	opts = opts.orDefaults()
	snap, err := loadSnapshot(path, ref, opts)
	if err != nil {
		return nil, err
	}
	server, ok := snap.Get(name)
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("entry %q not found in backup %q", name, ref)}
	}

	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	op := plan.AddOne(name, server)
	if doc.Has(name) {
		op = plan.UpdateOne(name, plan.Replace(server))
	}
	p, err := plan.NewPlanner(doc, opts.Verify).Plan(op)
	if err != nil {
		return nil, err
	}
	return finishRestore(ctx, path, doc, p, opts)
}

func loadSnapshot(path, ref string, opts *Options) (*config.Document, error) {
	store := Backups(path, opts)
	entry, err := store.Find(ref)
	if err != nil {
		return nil, err
	}
	return store.Load(entry)
}

func finishRestore(ctx context.Context, path string, doc *config.Document, p *plan.Plan, opts *Options) (*Result, error) {
	if opts.DryRun {
		return &Result{Plan: p}, nil
	}
	p.Approve()
	exec := opts.executor(path)
	if exec.BackupLabel == "" {
		exec.BackupLabel = "pre_restore"
	}
	txRes, err := exec.Apply(ctx, doc, p)
	return &Result{Plan: p, Tx: txRes}, err
}
