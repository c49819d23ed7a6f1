package http

import (
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Punch implements AttendanceHandler. The employee id comes from the token,
// never the body: you can only punch for yourself.
func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	req := attendance.PunchRequest{
		EmployeeID: identity.EmployeeID,
		CompanyID:  identity.CompanyID,
	}

	resp, err := h.attendanceService.Punch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Today implements AttendanceHandler. Reading the company's day triggers the
// reconciliation sweep.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	records, err := h.attendanceService.GetToday(r.Context(), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	filter := attendance.RangeFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	records, err := h.attendanceService.GetMyAttendance(r.Context(), identity.EmployeeID, identity.CompanyID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}
