package attendance

import (
	"context"
	"time"
)

// AttendanceRepository persists attendance rows. The (employee, date, company)
// pair is unique at the storage layer; Create surfaces a violation as
// ErrDuplicateRecord so concurrent check-ins resolve to exactly one winner.
type AttendanceRepository interface {
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no row exists for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*Attendance, error)

	// Update rewrites the punch-derived fields of a row that has not checked
	// out yet; terminal rows are left untouched.
	Update(ctx context.Context, att Attendance) error

	// ListByEmployeeAndRange returns the employee's rows with from <= date <= to.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]Attendance, error)

	// ListByDate returns every row for the company on one working day.
	ListByDate(ctx context.Context, date time.Time, companyID string) ([]Attendance, error)

	// ListOpenByDate returns rows with a check-in and no check-out.
	ListOpenByDate(ctx context.Context, date time.Time, companyID string) ([]Attendance, error)

	// CountLateSince counts rows with LateIn set and from <= date <= to.
	CountLateSince(ctx context.Context, employeeID string, from, to time.Time, companyID string) (int, error)

	// BulkCreateAbsences inserts synthetic absent rows, silently skipping
	// employees that already have a row for the day. Returns the number of
	// rows actually inserted.
	BulkCreateAbsences(ctx context.Context, records []Attendance) (int, error)
}
