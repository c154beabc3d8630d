// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DngSoftware/Fleet-Monkeys-Backend-sub000/internal/models"
)

// Precondition failures of an Approve call, checked in order. Handlers map
// these to HTTP status codes; raw storage errors are never surfaced.
var (
	ErrUnknownForm         = errors.New("unknown form")
	ErrNotAuthorized       = errors.New("person is not authorized to approve this form")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDuplicateVote       = errors.New("approver has already voted on this document")
	ErrPersonNotFound      = errors.New("person not found")
	ErrTransactionConflict = errors.New("concurrent approval conflict")
)

// InvalidStateError rejects an approval on a document that is not pending.
type InvalidStateError struct {
	CurrentStatus models.DocumentStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("document is not pending approval (current status: %s)", e.CurrentStatus)
}

// IsDuplicateKeyError detects a unique constraint violation across the
// dialects we run on (postgres in production, sqlite in tests).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateVote) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}

// IsConflictError detects transient serialization/lock failures that are
// safe to retry as a whole new transaction.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransactionConflict) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") || // postgres serialization failure
		strings.Contains(msg, "deadlock detected") ||
		strings.Contains(msg, "database is locked") || // sqlite busy
		strings.Contains(msg, "database table is locked")
}
