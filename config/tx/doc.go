// Package tx applies change plans to the configuration file with
// backup-first, validate-before-write transaction semantics.
//
// # Overview
//
// The Executor takes an approved plan and carries it through a fixed
// lifecycle. The document on disk is only ever replaced wholesale via an
// atomic rename, so every transaction either commits completely or leaves
// the file exactly as it was.
//
// Transaction lifecycle:
//  1. Planned: the plan is accepted, nothing has been touched
//  2. BackedUp: a full snapshot of the current file is in the backup store
//  3. Applying: diffs are applied to an in-memory copy
//  4. Validated: the resulting document passed validation
//  5. Committed: the file was atomically replaced
//  6. RolledBack: the transaction aborted; the file was never modified
//
// # Ordering Guarantees
//
// The backup is written before anything else happens, and a backup
// failure aborts the transaction. Validation runs on the fully mutated
// in-memory copy, so a plan whose combined effect is invalid never
// reaches disk even if each individual diff looked fine. The commit write
// goes through a temp file, fsync and rename.
//
// # Conflict Detection
//
// Every plan carries the stamp of the document it was computed from. The
// executor re-reads the live file's stamp under the commit lock and
// refuses to proceed when they differ, because applying the plan would
// silently discard whatever changed the file in between. The caller is
// expected to reload, re-plan and try again.
//
// # Concurrency
//
// Commits are serialized two ways: a process-wide mutex on the Executor
// and an advisory lock on a sibling of the configuration file. The
// advisory lock covers cooperating processes; editors and other programs
// that ignore it are caught by the stamp check instead.
//
// # Cancellation
//
// The context is observed before the backup is taken and never after.
// Once a snapshot exists the transaction runs to a terminal state, so a
// cancelled context can not leave a half-applied file behind.
package tx
