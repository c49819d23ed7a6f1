package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/events"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/shiftmath"
)

// earlyCheckInMinutes is how long before shift start a fixed-shift employee
// may check in.
const earlyCheckInMinutes = 60

// lateWindowDays is the trailing window the late-penalty evaluator inspects.
const lateWindowDays = 30

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	policyResolver policy.PolicyResolver
	sink           events.Sink

	// now is swappable so the state machine is testable at fixed instants.
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policyResolver policy.PolicyResolver,
	sink events.Sink,
) *AttendanceServiceImpl {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		policyResolver: policyResolver,
		sink:           sink,
		now:            time.Now,
	}
}

// dateOf truncates an instant to its working day.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// effectiveShiftType prefers the employee's assignment, falling back to the
// company-wide setting.
func effectiveShiftType(emp employee.Employee, pol policy.AttendancePolicy) policy.ShiftType {
	if emp.ShiftType != "" {
		return emp.ShiftType
	}
	return pol.ShiftType
}

// Punch implements attendance.AttendanceService. The first punch of the day
// checks in, the second checks out, anything after that is rejected.
func (s *AttendanceServiceImpl) Punch(ctx context.Context, req attendance.PunchRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceResponse{}, employee.ErrEmployeeNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}

	pol, err := s.policyResolver.Resolve(ctx, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now()
	day := dateOf(now)

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, day, req.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	if existing == nil {
		// A night shift's check-out lands on the next calendar day, so an
		// open record from yesterday takes precedence over a fresh check-in.
		prev, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, day.AddDate(0, 0, -1), req.CompanyID)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to load attendance: %w", err)
		}
		if prev != nil && prev.Open() {
			return s.checkOut(ctx, emp, pol, *prev, now)
		}
		return s.checkIn(ctx, emp, pol, now, day, nil)
	}

	if existing.Closed() {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceCompleted
	}

	if existing.Open() {
		return s.checkOut(ctx, emp, pol, *existing, now)
	}

	// A row without a check-in is the absent auto-mark's doing. The employee
	// may still show up inside their window, so the punch revives the row as
	// a check-in instead of bouncing off it.
	return s.checkIn(ctx, emp, pol, now, day, existing)
}

// checkIn is the NoRecord -> CheckedIn transition. Fixed shifts enforce the
// check-in window (shiftStart-60, shiftEnd] on the normalized timeline;
// flexible shifts accept any time. A non-nil absent row is one the auto-mark
// sweep created; it is revived in place rather than inserted over.
func (s *AttendanceServiceImpl) checkIn(ctx context.Context, emp employee.Employee, pol policy.AttendancePolicy, now time.Time, day time.Time, absent *attendance.Attendance) (attendance.AttendanceResponse, error) {
	if effectiveShiftType(emp, pol) == policy.ShiftTypeFixed {
		rule, ok := pol.ShiftRuleFor(emp.ShiftKey)
		if !ok {
			return attendance.AttendanceResponse{}, policy.ErrUnknownShift
		}
		window, err := shiftmath.ResolveWindow(rule.Start, rule.End)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("invalid shift rule for %q: %w", emp.ShiftKey, err)
		}

		// Arriving a full hour (or more) before the shift is rejected; the
		// window opens strictly after start-60. On a midnight-crossing shift
		// Adjust moves any pre-start clock onto the next day, so an early
		// arrival is valid on the raw timeline even when the normalized value
		// overshoots the window. Either timeline may admit the punch.
		earliest := window.StartMinutes - earlyCheckInMinutes
		if earliest < 0 {
			earliest = 0
		}
		inWindow := func(m int) bool {
			return m > earliest && m <= window.EndMinutes
		}
		nowMin := shiftmath.MinuteOfDay(now)
		if !inWindow(nowMin) && !inWindow(window.Adjust(nowMin)) {
			return attendance.AttendanceResponse{}, attendance.ErrOutsideCheckInWindow
		}
	}

	var record attendance.Attendance
	if absent != nil {
		record = *absent
		record.CheckIn = &now
		record.Status = attendance.StatusPresent
		if err := s.attendanceRepo.Update(ctx, record); err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
		}
	} else {
		created, err := s.attendanceRepo.Create(ctx, attendance.Attendance{
			EmployeeID: emp.ID,
			CompanyID:  emp.CompanyID,
			Date:       day,
			CheckIn:    &now,
			Status:     attendance.StatusPresent,
		})
		if err != nil {
			// The storage-level uniqueness constraint arbitrates concurrent
			// check-ins; the loser sees the same error a sequential retry would.
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
		record = created
	}

	resp := mapAttendanceToResponse(record)
	resp.EmployeeName = emp.FullName
	s.sink.Emit(events.EventCheckIn, emp.ID, resp)
	s.sink.Emit(events.EventNotification, emp.ID, fmt.Sprintf("Checked in at %s", now.Format("15:04")))

	return resp, nil
}

// checkOut is the CheckedIn -> CheckedOut transition: it derives worked
// minutes, late/early/overtime flags and the day status, applies the
// late-penalty downgrade, and persists the now-terminal record.
func (s *AttendanceServiceImpl) checkOut(ctx context.Context, emp employee.Employee, pol policy.AttendancePolicy, record attendance.Attendance, checkOutAt time.Time) (attendance.AttendanceResponse, error) {
	checkIn := *record.CheckIn

	workedMinutes := int(checkOutAt.Sub(checkIn).Minutes())
	if workedMinutes < 0 {
		workedMinutes = 0
	}

	var lateIn, earlyOut bool
	var overtimeMinutes int

	shiftType := effectiveShiftType(emp, pol)
	if shiftType == policy.ShiftTypeFixed {
		rule, ok := pol.ShiftRuleFor(emp.ShiftKey)
		if !ok {
			return attendance.AttendanceResponse{}, policy.ErrUnknownShift
		}
		window, err := shiftmath.ResolveWindow(rule.Start, rule.End)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("invalid shift rule for %q: %w", emp.ShiftKey, err)
		}

		// Anchor both instants to the record's own midnight. That puts them
		// on the same continuous timeline the window lives on, so a night
		// shift's next-day checkout lands past 1440 instead of wrapping.
		inMin := int(checkIn.Sub(record.Date).Minutes())
		outMin := int(checkOutAt.Sub(record.Date).Minutes())

		if !rule.BreakPaid {
			workedMinutes -= rule.BreakMinutes
			if workedMinutes < 0 {
				workedMinutes = 0
			}
		}

		lateIn = pol.Late.Enabled && inMin > window.StartMinutes+rule.GraceMinutes
		earlyOut = pol.EarlyOut.Enabled && outMin < window.EndMinutes

		if pol.Overtime.Enabled {
			if past := outMin - window.EndMinutes; past > pol.Overtime.StartAfterMinutes {
				overtimeMinutes = past
			}
		}
	} else {
		if pol.Overtime.Enabled {
			required := pol.Flexible.RequiredHours * 60
			if extra := workedMinutes - required; extra > pol.Overtime.StartAfterMinutes {
				overtimeMinutes = extra
			}
		}
	}

	status := deriveStatus(shiftType, pol, workedMinutes)

	if lateIn && status == attendance.StatusFullDay {
		downgrade, err := s.lateWindowExceeded(ctx, emp, pol, record.Date)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		if downgrade {
			status = attendance.StatusHalfDay
		}
	}

	record.CheckOut = &checkOutAt
	record.WorkedMinutes = workedMinutes
	record.LateIn = lateIn
	record.EarlyOut = earlyOut
	record.OvertimeMinutes = overtimeMinutes
	record.Status = status

	if err := s.attendanceRepo.Update(ctx, record); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	resp := mapAttendanceToResponse(record)
	resp.EmployeeName = emp.FullName
	s.sink.Emit(events.EventCheckOut, emp.ID, resp)
	s.sink.Emit(events.EventNotification, emp.ID, fmt.Sprintf("Checked out at %s", checkOutAt.Format("15:04")))

	return resp, nil
}

// lateWindowExceeded counts late-ins over the trailing 30 days, today's
// included, against the late rule's threshold. The resulting override only
// ever downgrades a full day.
func (s *AttendanceServiceImpl) lateWindowExceeded(ctx context.Context, emp employee.Employee, pol policy.AttendancePolicy, day time.Time) (bool, error) {
	if !pol.Late.Enabled {
		return false, nil
	}

	from := day.AddDate(0, 0, -lateWindowDays)
	priorLate, err := s.attendanceRepo.CountLateSince(ctx, emp.ID, from, day, emp.CompanyID)
	if err != nil {
		return false, fmt.Errorf("failed to count late check-ins: %w", err)
	}

	// Today's record is not yet persisted as late, hence the +1.
	return priorLate+1 >= pol.Late.LateToHalfDayCount, nil
}

// deriveStatus classifies the day from worked hours against the policy
// thresholds. A checked-in day below the half-day bar still counts as absent.
func deriveStatus(shiftType policy.ShiftType, pol policy.AttendancePolicy, workedMinutes int) attendance.Status {
	workedHours := float64(workedMinutes) / 60.0

	if shiftType == policy.ShiftTypeFlexible {
		switch {
		case workedHours >= float64(pol.Flexible.RequiredHours):
			return attendance.StatusFullDay
		case workedHours >= pol.MinHalfDayHours:
			return attendance.StatusHalfDay
		default:
			return attendance.StatusAbsent
		}
	}

	switch {
	case workedHours >= pol.MinFullDayHours:
		return attendance.StatusFullDay
	case workedHours >= pol.MinHalfDayHours:
		return attendance.StatusHalfDay
	default:
		return attendance.StatusAbsent
	}
}

// GetToday implements attendance.AttendanceService. Reading today's data is
// what triggers the reconciliation sweep, so stale open sessions and missing
// absences are corrected before the caller sees them.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, companyID string) ([]attendance.AttendanceResponse, error) {
	today := dateOf(s.now())

	if err := s.Reconcile(ctx, today, companyID); err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByDate(ctx, today, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapAttendanceToResponse(rec))
	}
	return responses, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, employeeID, companyID string, filter attendance.RangeFilter) ([]attendance.AttendanceResponse, error) {
	today := dateOf(s.now())
	from, to, err := filter.Bounds(today.AddDate(0, 0, -30), today)
	if err != nil {
		return nil, err
	}

	records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, employeeID, from, to, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapAttendanceToResponse(rec))
	}
	return responses, nil
}

// Reconcile implements attendance.AttendanceService: absent marking, forced
// checkouts, then absence alerts, each safe to repeat.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, date time.Time, companyID string) error {
	pol, err := s.policyResolver.Resolve(ctx, companyID)
	if err != nil {
		return err
	}

	if err := s.markAbsentees(ctx, date, pol, companyID); err != nil {
		return err
	}
	if err := s.autoCheckout(ctx, date, pol, companyID); err != nil {
		return err
	}
	return s.raiseConsecutiveAbsenceAlerts(ctx, date, pol, companyID)
}

// markAbsentees bulk-inserts absent rows for eligible employees with no
// attendance row once the cutoff time of day has passed. Inserts skip
// employees that already have a row, so repeated runs are no-ops.
func (s *AttendanceServiceImpl) markAbsentees(ctx context.Context, date time.Time, pol policy.AttendancePolicy, companyID string) error {
	cutoffMin, err := shiftmath.ParseClock(pol.AbsentCutoff)
	if err != nil {
		return fmt.Errorf("invalid absent cutoff %q: %w", pol.AbsentCutoff, err)
	}

	now := s.now()
	if dateOf(now).Equal(date) && shiftmath.MinuteOfDay(now) < cutoffMin {
		return nil
	}
	if date.After(dateOf(now)) {
		return nil
	}

	workforce, err := s.employeeRepo.ListAttendanceEligible(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to list workforce: %w", err)
	}

	existing, err := s.attendanceRepo.ListByDate(ctx, date, companyID)
	if err != nil {
		return fmt.Errorf("failed to list attendance: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		seen[rec.EmployeeID] = struct{}{}
	}

	var absences []attendance.Attendance
	for _, emp := range workforce {
		if _, ok := seen[emp.ID]; ok {
			continue
		}
		absences = append(absences, attendance.Attendance{
			EmployeeID: emp.ID,
			CompanyID:  companyID,
			Date:       date,
			Status:     attendance.StatusAbsent,
		})
	}

	if len(absences) == 0 {
		return nil
	}

	inserted, err := s.attendanceRepo.BulkCreateAbsences(ctx, absences)
	if err != nil {
		return fmt.Errorf("failed to bulk create absences: %w", err)
	}
	if inserted > 0 {
		slog.Info("marked absent employees", "company_id", companyID, "date", date.Format("2006-01-02"), "count", inserted)
	}
	return nil
}

// autoCheckout closes open sessions whose auto-checkout instant has passed,
// running the full checkout transition with the synthetic timestamp.
// Employees with unresolved shift data are skipped, not fatal.
func (s *AttendanceServiceImpl) autoCheckout(ctx context.Context, date time.Time, pol policy.AttendancePolicy, companyID string) error {
	// A night shift dated yesterday closes after midnight, so the sweep also
	// covers the previous day's still-open rows.
	open, err := s.attendanceRepo.ListOpenByDate(ctx, date.AddDate(0, 0, -1), companyID)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}
	sameDay, err := s.attendanceRepo.ListOpenByDate(ctx, date, companyID)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}
	open = append(open, sameDay...)

	now := s.now()
	closed := 0
	for _, rec := range open {
		emp, err := s.employeeRepo.GetByID(ctx, rec.EmployeeID, companyID)
		if err != nil {
			slog.Warn("auto-checkout: skipping employee", "employee_id", rec.EmployeeID, "error", err)
			continue
		}

		closeAt, ok := s.autoCheckoutInstant(emp, pol, rec)
		if !ok {
			continue
		}
		if now.Before(closeAt) {
			continue
		}

		if _, err := s.checkOut(ctx, emp, pol, rec, closeAt); err != nil {
			slog.Error("auto-checkout failed", "employee_id", rec.EmployeeID, "attendance_id", rec.ID, "error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		slog.Info("auto-closed open sessions", "company_id", companyID, "date", date.Format("2006-01-02"), "count", closed)
	}
	return nil
}

// autoCheckoutInstant computes when an open session should be force-closed:
// flexible shifts at check-in plus the required hours, fixed shifts at the
// shift-end clock time, one day later when the shift crosses midnight.
func (s *AttendanceServiceImpl) autoCheckoutInstant(emp employee.Employee, pol policy.AttendancePolicy, rec attendance.Attendance) (time.Time, bool) {
	if effectiveShiftType(emp, pol) == policy.ShiftTypeFlexible {
		return rec.CheckIn.Add(time.Duration(pol.Flexible.RequiredHours) * time.Hour), true
	}

	rule, ok := pol.ShiftRuleFor(emp.ShiftKey)
	if !ok {
		return time.Time{}, false
	}
	window, err := shiftmath.ResolveWindow(rule.Start, rule.End)
	if err != nil {
		return time.Time{}, false
	}

	endMin, err := shiftmath.ParseClock(rule.End)
	if err != nil {
		return time.Time{}, false
	}
	closeAt := rec.Date.Add(time.Duration(endMin) * time.Minute)
	if window.CrossesMidnight {
		closeAt = closeAt.AddDate(0, 0, 1)
	}
	return closeAt, true
}

// raiseConsecutiveAbsenceAlerts emits an alert for every employee whose
// trailing threshold days are all absent. Alerts are re-emitted on every
// sweep; suppression is the subscriber's concern.
func (s *AttendanceServiceImpl) raiseConsecutiveAbsenceAlerts(ctx context.Context, date time.Time, pol policy.AttendancePolicy, companyID string) error {
	threshold := pol.ConsecutiveAbsenceDays
	if threshold <= 0 {
		return nil
	}

	workforce, err := s.employeeRepo.ListAttendanceEligible(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to list workforce: %w", err)
	}

	from := date.AddDate(0, 0, -(threshold - 1))
	for _, emp := range workforce {
		records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, emp.ID, from, date, companyID)
		if err != nil {
			slog.Warn("absence alert: skipping employee", "employee_id", emp.ID, "error", err)
			continue
		}
		if len(records) < threshold {
			continue
		}

		allAbsent := true
		for _, rec := range records {
			if rec.Status != attendance.StatusAbsent {
				allAbsent = false
				break
			}
		}
		if !allAbsent {
			continue
		}

		s.sink.Emit(events.EventConsecutiveAbsence, emp.ID, map[string]any{
			"employee_id": emp.ID,
			"days":        threshold,
			"through":     date.Format("2006-01-02"),
		})
	}
	return nil
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	var employeeName string
	if att.EmployeeName != nil {
		employeeName = *att.EmployeeName
	}

	return attendance.AttendanceResponse{
		ID:              att.ID,
		EmployeeID:      att.EmployeeID,
		EmployeeName:    employeeName,
		Date:            att.Date.Format("2006-01-02"),
		CheckIn:         timePtrToString(att.CheckIn),
		CheckOut:        timePtrToString(att.CheckOut),
		WorkedMinutes:   att.WorkedMinutes,
		LateIn:          att.LateIn,
		EarlyOut:        att.EarlyOut,
		OvertimeMinutes: att.OvertimeMinutes,
		Status:          string(att.Status),
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}
