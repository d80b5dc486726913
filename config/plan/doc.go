// Package plan computes per-entry change plans for a configuration
// document without touching storage.
//
// A Planner resolves the requested operation (add, update, remove-many,
// update-many) against a document snapshot and produces a Plan: an ordered
// list of Diffs, one per affected entry, each carrying the unmasked
// before/after servers and that entry's validation result.
//
// Plans are previews. Nothing is written until a Plan is approved and
// handed to the tx package. The Before/After servers inside a Diff stay
// unmasked because they are what eventually gets written; every rendering
// helper on Diff masks sensitive env values on the way out.
//
// Bulk selectors that match nothing produce a plan with zero diffs and a
// warning, not an error. Whether an empty plan is fatal is the caller's
// policy.
package plan
