package attendance

import (
	"time"

	"github.com/workpulse/workpulse-backend-go/internal/pkg/validator"
)

// PunchRequest is the single attendance action of the day: the first punch
// checks in, the second checks out.
type PunchRequest struct {
	EmployeeID string `json:"employee_id"`
	CompanyID  string `json:"-"`
}

func (r PunchRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RangeFilter selects attendance rows by date range; both bounds "YYYY-MM-DD",
// inclusive. Empty bounds default to the trailing 30 days.
type RangeFilter struct {
	StartDate string
	EndDate   string
}

// Bounds validates the filter and returns the parsed range, substituting the
// defaults for empty bounds.
func (f RangeFilter) Bounds(defaultFrom, defaultTo time.Time) (time.Time, time.Time, error) {
	var errs validator.ValidationErrors
	from, to := defaultFrom, defaultTo
	if f.StartDate != "" {
		parsed, ok := validator.IsValidDate(f.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"})
		} else {
			from = parsed
		}
	}
	if f.EndDate != "" {
		parsed, ok := validator.IsValidDate(f.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"})
		} else {
			to = parsed
		}
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return from, to, nil
}

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	EmployeeName    string  `json:"employee_name,omitempty"`
	Date            string  `json:"date"`
	CheckIn         *string `json:"check_in"`
	CheckOut        *string `json:"check_out"`
	WorkedMinutes   int     `json:"worked_minutes"`
	LateIn          bool    `json:"late_in"`
	EarlyOut        bool    `json:"early_out"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	Status          string  `json:"status"`
}
