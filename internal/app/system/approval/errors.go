// internal/app/system/approval/errors.go
package approval

import "fmt"

// NotFoundError means the referenced request does not exist. Not retried;
// surfaced to the caller as a user-visible failure.
type NotFoundError struct {
	RequestID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("approval request %s not found", e.RequestID)
}

// ValidationError means required input was missing or malformed. Raised
// before any write; no partial state change occurs.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// PermissionError means the actor lacks the authority implied by the
// requested transition. Raised explicitly; a disallowed actor is never a
// silent no-op.
type PermissionError struct {
	Role   string
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %q may not %s this request", e.Role, e.Action)
}
