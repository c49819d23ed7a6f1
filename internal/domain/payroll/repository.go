package payroll

import (
	"context"
)

// PayrollRepository persists payroll rows.
type PayrollRepository interface {
	Create(ctx context.Context, p Payroll) (Payroll, error)

	GetByID(ctx context.Context, id string, companyID string) (Payroll, error)

	// ListByEmployeeAndMonth returns every cycle row generated for the
	// employee in the labeled month.
	ListByEmployeeAndMonth(ctx context.Context, employeeID, monthLabel, companyID string) ([]Payroll, error)

	ListByMonth(ctx context.Context, monthLabel, companyID string) ([]Payroll, error)

	// MarkPaid transitions a pending row to paid with a conditional write: it
	// returns ErrAlreadyPaid when the row is no longer pending, so a doubled
	// button-press or retried webhook cannot produce two transitions.
	MarkPaid(ctx context.Context, p Payroll) (Payroll, error)
}
