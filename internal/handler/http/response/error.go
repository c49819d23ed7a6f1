package response

import (
	"errors"
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrOutsideCheckInWindow):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceCompleted):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrInvalidPayCycle):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrCycleAlreadyExists):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrHalfCycleRequired):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrNoRemainingAmount):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrAlreadyPaid):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll record not found")

	// Policy domain errors
	case errors.Is(err, policy.ErrUnknownShift):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, policy.ErrPolicyNotFound):
		NotFound(w, "Attendance policy not found")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
