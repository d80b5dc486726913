// Package bulk drives one mutation across every entry a selector
// matches, each entry as its own independent transaction.
//
// The selector is resolved once against the starting document, and the
// run reports one outcome per matched entry in that match order no
// matter how the work is scheduled internally. Planning and validation
// are read-only and may run with bounded parallelism; commits always
// happen one at a time, in match order, through the transaction
// executor's locks.
//
// Each entry commits on its own, so a failure part way through a run
// never takes back entries that already committed. The policy decides
// whether a failure stops the run (remaining entries are reported as
// skipped) or is recorded while the run continues.
//
// Dry runs compute and return the per-entry plans without acquiring the
// write lock or touching disk in any way.
package bulk
