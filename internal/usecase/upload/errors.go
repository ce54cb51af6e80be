package upload

import "errors"

var (
	// ErrSessionNotFound covers both sessions that never existed and sessions
	// whose store records have expired.
	ErrSessionNotFound = errors.New("upload: session not found")
	// ErrValidation flags bad client input; nothing was mutated and the call
	// is safe to retry after correction.
	ErrValidation = errors.New("upload: validation failed")
	// ErrConflict flags an operation against a session that is not in an
	// accepting state.
	ErrConflict = errors.New("upload: conflicting session state")
	// ErrNotReady flags a result request against a session that has not
	// reached its terminal state yet.
	ErrNotReady = errors.New("upload: result not ready")
	// ErrUnavailable flags a required external collaborator being
	// unreachable; the identical call may be retried.
	ErrUnavailable = errors.New("upload: dependency unavailable")
)
