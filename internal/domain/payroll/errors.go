package payroll

import "errors"

var (
	// Validation errors
	ErrInvalidPayCycle = errors.New("invalid pay cycle")

	// Conflict errors: the requested cycle collides with rows already
	// generated for the month.
	ErrCycleAlreadyExists = errors.New("salary already generated for this cycle")
	ErrHalfCycleRequired  = errors.New("no half payment exists for this month")
	ErrNoRemainingAmount  = errors.New("no remaining amount to pay")
	ErrAlreadyPaid        = errors.New("payroll has already been paid")

	// General errors
	ErrPayrollNotFound = errors.New("payroll record not found")
)
