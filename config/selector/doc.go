// Package selector compiles glob-style patterns and resolves them against
// entry names.
//
// # Syntax
//
//   - `*` matches zero or more characters, never '/'
//   - `?` matches exactly one character, never '/'
//   - `[abc]`, `[a-z]` match one character from the set; a leading `!`
//     negates the set (a negated set still never matches '/')
//   - `{a,b}` matches either alternative; alternation does not nest
//   - `\x` matches the literal character x
//
// A selector without any of the above matches only the exact name.
//
// # Semantics
//
// Matching is case-sensitive and total: every candidate name is tested
// independently, and matches are returned in the order the names were
// given, never sorted. Alternatives inside {} are tried in listed order and
// the first alternative that matches wins; since a name either matches or
// it does not, the order only determines which branch reported the match.
//
// An empty result is not an error at this layer. Callers decide whether
// zero matches is fatal for their operation.
package selector
