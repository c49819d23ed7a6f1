package attendance

import (
	"time"
)

// Status is the derived classification of one employee-day.
type Status string

const (
	// StatusPresent is the open state between check-in and check-out.
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusFullDay Status = "full_day"
)

// Attendance is one employee's record for one calendar day. There is at most
// one row per (employee, date, company); the storage layer enforces this with
// a unique index. Once CheckOut is set the row is terminal.
type Attendance struct {
	ID         string
	EmployeeID string
	CompanyID  string

	// Date is the working day, truncated to midnight. CheckIn/CheckOut are
	// absolute instants; a night shift's CheckOut falls on the next calendar
	// day.
	Date     time.Time
	CheckIn  *time.Time
	CheckOut *time.Time

	WorkedMinutes   int
	LateIn          bool
	EarlyOut        bool
	OvertimeMinutes int
	Status          Status

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}

// Open reports whether the day has a check-in but no check-out yet.
func (a Attendance) Open() bool {
	return a.CheckIn != nil && a.CheckOut == nil
}

// Closed reports whether the day is terminal. Only a check-out closes the
// day; a synthetic absent row is still open to a late check-in.
func (a Attendance) Closed() bool {
	return a.CheckOut != nil
}
