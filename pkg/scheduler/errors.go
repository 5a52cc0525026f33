package scheduler

import "errors"

// Validation failures. Raised before any placement work begins; the caller
// must fix the plan and retry.
var (
	ErrNoRoles      = errors.New("plan has no roles to schedule")
	ErrBadPeriod    = errors.New("days per period must be positive")
	ErrBadStartDate = errors.New("plan has no start date")
	ErrBadEndDate   = errors.New("plan has no end date")
	ErrBadDuration  = errors.New("plan end date must be after its start date")
)
