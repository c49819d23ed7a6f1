package attendance

import (
	"context"
	"time"
)

// AttendanceService is the time-and-policy rules engine for attendance.
type AttendanceService interface {
	// Punch records the employee's single daily action: check-in on the first
	// call, check-out on the second, rejection once the day is closed.
	Punch(ctx context.Context, req PunchRequest) (AttendanceResponse, error)

	// GetToday returns the company's records for the current day, running the
	// reconciliation sweep (absent marking, auto-checkout, absence alerts)
	// first. The sweep is idempotent, so calling this repeatedly is safe.
	GetToday(ctx context.Context, companyID string) ([]AttendanceResponse, error)

	// GetMyAttendance returns one employee's history.
	GetMyAttendance(ctx context.Context, employeeID, companyID string, filter RangeFilter) ([]AttendanceResponse, error)

	// Reconcile runs the three batch corrections for one working day. Safe to
	// call redundantly; the absence alert re-fires on every invocation by
	// design of the alerting contract.
	Reconcile(ctx context.Context, date time.Time, companyID string) error
}
