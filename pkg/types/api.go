package types

import "errors"

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat     ErrKind = iota // malformed document (bad JSON, wrong top-level shape)
	ErrKindPattern                   // malformed selector syntax
	ErrKindValidation                // Error-severity validation issue; blocks commit
	ErrKindConflict                  // on-disk document changed since the plan was computed
	ErrKindBackup                    // snapshot write failed; transaction aborted before mutation
	ErrKindIo                        // temp-write/rename or other filesystem failure
	ErrKindNotFound                  // missing entry/backup/template/profile
	ErrKindExists                    // target name already present
	ErrKindState                     // invalid operation for current state (e.g., unapproved plan)
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindPattern:
		return "pattern"
	case ErrKindValidation:
		return "validation"
	case ErrKindConflict:
		return "conflict"
	case ErrKindBackup:
		return "backup"
	case ErrKindIo:
		return "io"
	case ErrKindNotFound:
		return "not-found"
	case ErrKindExists:
		return "exists"
	case ErrKindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinels commonly returned by the engine packages.
var (
	// ErrNotConfig indicates the file is not a configuration document.
	ErrNotConfig = &Error{Kind: ErrKindFormat, Msg: "not a configuration document (expected a single top-level JSON object)"}
	// ErrBadPattern indicates a selector that fails to compile.
	ErrBadPattern = &Error{Kind: ErrKindPattern, Msg: "malformed selector pattern"}
	// ErrValidationFailed indicates an Error-severity validation issue.
	ErrValidationFailed = &Error{Kind: ErrKindValidation, Msg: "validation failed"}
	// ErrConflict indicates the on-disk document changed after planning.
	ErrConflict = &Error{Kind: ErrKindConflict, Msg: "configuration changed since plan was computed; re-run the command"}
	// ErrBackupFailed indicates the pre-mutation snapshot could not be written.
	ErrBackupFailed = &Error{Kind: ErrKindBackup, Msg: "backup write failed"}
	// ErrNotFound indicates a missing entry/backup/template/profile.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrExists indicates the target name is already taken.
	ErrExists = &Error{Kind: ErrKindExists, Msg: "already exists"}
	// ErrNotApproved indicates an unapproved plan reached the executor.
	ErrNotApproved = &Error{Kind: ErrKindState, Msg: "plan has not been approved"}
)

// KindOf extracts the ErrKind from err's chain. The second return is false
// when no *Error is present in the chain.
func KindOf(err error) (ErrKind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}

// IsKind reports whether err's chain contains an *Error of the given kind.
func IsKind(err error, k ErrKind) bool {
	got, ok := KindOf(err)
	return ok && got == k
}
