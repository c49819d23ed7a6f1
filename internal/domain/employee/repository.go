package employee

import "context"

// EmployeeRepository is the roster provider contract. The engine never writes
// employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// ListAttendanceEligible returns the active employees whose role is part
	// of the tracked workforce (see EmploymentRole.AttendanceEligible).
	ListAttendanceEligible(ctx context.Context, companyID string) ([]Employee, error)

	// ListCompanyIDs returns every company scope with at least one active
	// employee. Batch sweeps iterate over this.
	ListCompanyIDs(ctx context.Context) ([]string, error)
}
