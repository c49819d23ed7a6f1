package payroll

import (
	"context"
)

// PayrollService computes pay amounts from attendance history and the
// employee's salary structure, with at-most-once-per-cycle guarantees.
type PayrollService interface {
	// Generate creates a pending payroll row for the requested cycle of the
	// current month, enforcing the cycle-exclusivity invariants.
	Generate(ctx context.Context, req GeneratePayrollRequest) (PayrollResponse, error)

	Get(ctx context.Context, id, companyID string) (PayrollResponse, error)

	ListMonth(ctx context.Context, monthLabel, companyID string) ([]PayrollResponse, error)

	// MarkPaid transitions a pending row to paid exactly once. A reference id
	// is assigned only when the row has none; replays return the row
	// unchanged.
	MarkPaid(ctx context.Context, id, companyID, processedBy string) (PayrollResponse, error)

	// ConfirmPayment applies a verified webhook confirmation. Signature
	// verification happens at the transport boundary before this is called.
	// Replays are idempotent: the row is returned unchanged.
	ConfirmPayment(ctx context.Context, conf PaymentConfirmation) (PayrollResponse, error)
}
