// Package verify checks entries and whole documents for structural and
// semantic problems.
//
// Checks accumulate: a Result carries every issue found, never just the
// first. Error-severity issues block a commit; warnings are surfaced to the
// user and do not block.
//
// Checks that touch the filesystem or PATH (does the command resolve, do
// path-looking arguments exist) run only when Options.Deep is set. They are
// never on by default because they do I/O that callers must opt into.
package verify
