package policy

import "context"

// PolicyResolver yields the effective attendance policy for a company. A
// company with no persisted policy resolves to the built-in default; absence
// is a valid state, never an error.
type PolicyResolver interface {
	Resolve(ctx context.Context, companyID string) (AttendancePolicy, error)
	Upsert(ctx context.Context, p AttendancePolicy) (AttendancePolicy, error)
}
