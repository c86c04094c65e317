package domain

import "errors"

// Sentinel errors shared across the service and repository layers. Callers
// classify failures with errors.Is and the HTTP layer maps them to status
// codes.
var (
	// ErrNotFound marks lookups whose target row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks writes rejected by a uniqueness constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState marks operations against a row whose lifecycle state
	// does not admit them, such as re-reviewing a settled contribution or
	// replaying a consumed history record.
	ErrInvalidState = errors.New("invalid state")

	// ErrForbidden marks operations the acting user may not perform.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation failed")

	// ErrUpload marks object-store failures while storing images.
	ErrUpload = errors.New("upload failed")

	// ErrAuditLog marks a history-ledger write that failed after its plant
	// mutation already committed. The mutation stands; only the audit trail
	// is missing an entry.
	ErrAuditLog = errors.New("audit log write failed")
)
