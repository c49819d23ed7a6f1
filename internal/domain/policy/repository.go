package policy

import "context"

// PolicyRepository persists per-company attendance policies. A missing policy
// is reported with ErrPolicyNotFound and is a valid state, not a failure.
type PolicyRepository interface {
	GetByCompanyID(ctx context.Context, companyID string) (AttendancePolicy, error)
	Upsert(ctx context.Context, p AttendancePolicy) (AttendancePolicy, error)
}
