package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrJobTypeRequired       = errors.New("ledger: job type is required")
	ErrTargetLangRequired    = errors.New("ledger: target language is required")
	ErrModeInvalid           = errors.New("ledger: mode must be preview or apply")
	ErrStatusInvalid         = errors.New("ledger: unknown job status")
	ErrJobRolledBack         = errors.New("ledger: job is rolled back and cannot change")
	ErrContentStoreRequired  = errors.New("ledger: rollback requires a content store")
	ErrNavigationUnavailable = errors.New("ledger: rollback requires a navigation store")
)

// NotFoundError is returned when a job id is unknown to the ledger.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "job not found"
	}
	return fmt.Sprintf("job %q not found", e.ID)
}
