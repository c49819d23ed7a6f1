package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
)

// CompanySource lists the company scopes the reconciliation sweep covers.
type CompanySource interface {
	ListCompanyIDs(ctx context.Context) ([]string, error)
}

// AttendanceJobs runs the attendance reconciliation sweep on a schedule, in
// addition to the lazy trigger on today-reads. Both paths are idempotent so
// overlap is harmless.
type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	companies     CompanySource

	now func() time.Time
}

func NewAttendanceJobs(attendanceSvc attendance.AttendanceService, companies CompanySource) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		companies:     companies,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_reconciliation", 1*time.Minute, j.ReconcileToday)
}

// ReconcileToday sweeps every company for the current day. One company
// failing does not stop the rest.
func (j *AttendanceJobs) ReconcileToday(ctx context.Context) error {
	now := j.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	companyIDs, err := j.companies.ListCompanyIDs(ctx)
	if err != nil {
		return err
	}

	for _, companyID := range companyIDs {
		if err := j.attendanceSvc.Reconcile(ctx, today, companyID); err != nil {
			slog.Error("attendance reconciliation failed", "company_id", companyID, "error", err)
		}
	}
	return nil
}
