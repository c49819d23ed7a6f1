package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/events"
	"github.com/workpulse/workpulse-backend-go/internal/repository/memory"
	policysvc "github.com/workpulse/workpulse-backend-go/internal/service/policy"
)

const testCompanyID = "company-1"

// testDay is an arbitrary working day; tests pin the clock to instants on or
// around it.
var testDay = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute, sec int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, 0, day.Location())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testEmployee(id, shiftKey string) employee.Employee {
	return employee.Employee{
		ID:        id,
		CompanyID: testCompanyID,
		FullName:  "Employee " + id,
		Role:      employee.RoleEmployee,
		ShiftKey:  shiftKey,
		IsActive:  true,
	}
}

func newTestService(emps ...employee.Employee) (*AttendanceServiceImpl, *memory.AttendanceRepository, *events.CaptureSink) {
	attRepo := memory.NewAttendanceRepository()
	empRepo := memory.NewEmployeeRepository(emps...)
	sink := &events.CaptureSink{}
	svc := NewAttendanceService(attRepo, empRepo, policysvc.NewPolicyResolver(nil), sink)
	return svc, attRepo, sink
}

func TestAttendanceService_Punch_CheckInWithinWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, sink := newTestService(testEmployee("emp-1", "morning"))

	svc.now = fixedClock(at(testDay, 8, 5, 0))

	resp, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	require.NotNil(t, resp.CheckIn)
	assert.Nil(t, resp.CheckOut)

	require.NotEmpty(t, sink.Events)
	assert.Equal(t, events.EventCheckIn, sink.Events[0].Event)
	assert.Equal(t, "emp-1", sink.Events[0].UserID)
}

func TestAttendanceService_Punch_CheckInTooEarly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(testEmployee("emp-1", "morning"))

	// 08:00 is a full hour before the 09:00 shift and sits outside the window.
	svc.now = fixedClock(at(testDay, 8, 0, 0))

	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	assert.ErrorIs(t, err, attendance.ErrOutsideCheckInWindow)
}

func TestAttendanceService_Punch_SecondPunchChecksOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, sink := newTestService(testEmployee("emp-1", "morning"))

	svc.now = fixedClock(at(testDay, 9, 0, 30))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	svc.now = fixedClock(at(testDay, 18, 20, 0))
	resp, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	// 559 elapsed minutes minus the 60-minute unpaid break.
	assert.Equal(t, 499, resp.WorkedMinutes)
	assert.False(t, resp.LateIn)
	assert.False(t, resp.EarlyOut)
	assert.Equal(t, 0, resp.OvertimeMinutes)
	assert.Equal(t, string(attendance.StatusFullDay), resp.Status)
	require.NotNil(t, resp.CheckOut)

	var names []string
	for _, ev := range sink.Events {
		names = append(names, ev.Event)
	}
	assert.Contains(t, names, events.EventCheckOut)
}

func TestAttendanceService_Punch_ClosedDayRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(testEmployee("emp-1", "morning"))

	svc.now = fixedClock(at(testDay, 9, 0, 0))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	svc.now = fixedClock(at(testDay, 18, 0, 0))
	_, err = svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	svc.now = fixedClock(at(testDay, 18, 30, 0))
	_, err = svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	assert.ErrorIs(t, err, attendance.ErrAttendanceCompleted)
}

func TestAttendanceService_Punch_NightShiftCrossesMidnight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestService(testEmployee("emp-1", "night"))

	// Check in half an hour before the 21:00 shift.
	svc.now = fixedClock(at(testDay, 20, 30, 0))
	first, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Equal(t, testDay.Format("2006-01-02"), first.Date)

	// The second punch lands the next calendar morning and must close the
	// previous day's record with a positive duration.
	nextDay := testDay.AddDate(0, 0, 1)
	svc.now = fixedClock(at(nextDay, 5, 30, 0))
	resp, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	assert.Equal(t, testDay.Format("2006-01-02"), resp.Date)
	assert.Equal(t, 480, resp.WorkedMinutes)
	assert.False(t, resp.LateIn)
	assert.True(t, resp.EarlyOut)
	assert.Equal(t, string(attendance.StatusFullDay), resp.Status)
}

func TestAttendanceService_Punch_LatePenaltyDowngradesFullDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestService(testEmployee("emp-1", "morning"))

	// Two prior late days within the trailing window; today's late check-in
	// is the third occurrence against the default threshold of three.
	for i := 1; i <= 2; i++ {
		_, err := attRepo.Create(ctx, attendance.Attendance{
			EmployeeID: "emp-1",
			CompanyID:  testCompanyID,
			Date:       testDay.AddDate(0, 0, -i),
			LateIn:     true,
			Status:     attendance.StatusFullDay,
		})
		require.NoError(t, err)
	}

	svc.now = fixedClock(at(testDay, 9, 20, 0))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	svc.now = fixedClock(at(testDay, 18, 30, 0))
	resp, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	assert.True(t, resp.LateIn)
	// 490 worked minutes qualifies for a full day; the late rule downgrades it.
	assert.Equal(t, 490, resp.WorkedMinutes)
	assert.Equal(t, string(attendance.StatusHalfDay), resp.Status)
}

func TestAttendanceService_Reconcile_MarkAbsentIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestService(
		testEmployee("emp-1", "morning"),
		testEmployee("emp-2", "morning"),
	)

	svc.now = fixedClock(at(testDay, 9, 0, 0))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	// Before the cutoff nothing is marked.
	svc.now = fixedClock(at(testDay, 11, 0, 0))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))
	rows, err := attRepo.ListByDate(ctx, testDay, testCompanyID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	svc.now = fixedClock(at(testDay, 12, 30, 0))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))

	rows, err = attRepo.ListByDate(ctx, testDay, testCompanyID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byEmployee := map[string]attendance.Attendance{}
	for _, row := range rows {
		byEmployee[row.EmployeeID] = row
	}
	assert.Equal(t, attendance.StatusPresent, byEmployee["emp-1"].Status)
	assert.Equal(t, attendance.StatusAbsent, byEmployee["emp-2"].Status)
	assert.Nil(t, byEmployee["emp-2"].CheckIn)
}

func TestAttendanceService_Punch_ChecksInOverAbsentAutoMark(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestService(testEmployee("emp-1", "evening"))

	// The absent sweep fires at the cutoff, before the 13:00 shift opens.
	svc.now = fixedClock(at(testDay, 12, 1, 0))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))

	rec, err := attRepo.GetByEmployeeAndDate(ctx, "emp-1", testDay, testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Nil(t, rec.CheckIn)

	// An in-window punch revives the synthetic row as a check-in.
	svc.now = fixedClock(at(testDay, 13, 0, 0))
	resp, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), resp.Status)
	require.NotNil(t, resp.CheckIn)

	// The revived day then closes like any other.
	svc.now = fixedClock(at(testDay, 22, 0, 0))
	resp, err = svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)
	assert.Equal(t, 480, resp.WorkedMinutes)
	assert.Equal(t, string(attendance.StatusFullDay), resp.Status)
}

func TestAttendanceService_Reconcile_AutoCheckout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, sink := newTestService(testEmployee("emp-1", "morning"))

	svc.now = fixedClock(at(testDay, 9, 0, 0))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	// Well past the 18:00 shift end with no check-out.
	svc.now = fixedClock(at(testDay, 19, 0, 0))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))

	rec, err := attRepo.GetByEmployeeAndDate(ctx, "emp-1", testDay, testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckOut)

	// Closed at the shift end, not at sweep time.
	assert.Equal(t, at(testDay, 18, 0, 0), *rec.CheckOut)
	assert.Equal(t, 480, rec.WorkedMinutes)
	assert.Equal(t, attendance.StatusFullDay, rec.Status)

	var names []string
	for _, ev := range sink.Events {
		names = append(names, ev.Event)
	}
	assert.Contains(t, names, events.EventCheckOut)
}

func TestAttendanceService_Reconcile_AutoCheckoutNightShift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestService(testEmployee("emp-1", "night"))

	svc.now = fixedClock(at(testDay, 21, 0, 0))
	_, err := svc.Punch(ctx, attendance.PunchRequest{EmployeeID: "emp-1", CompanyID: testCompanyID})
	require.NoError(t, err)

	// The record is dated testDay but its shift ends the next morning; the
	// next day's sweep has to reach back and close it at 06:00.
	nextDay := testDay.AddDate(0, 0, 1)
	svc.now = fixedClock(at(nextDay, 10, 0, 0))
	require.NoError(t, svc.Reconcile(ctx, nextDay, testCompanyID))

	rec, err := attRepo.GetByEmployeeAndDate(ctx, "emp-1", testDay, testCompanyID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.CheckOut)
	assert.Equal(t, at(nextDay, 6, 0, 0), *rec.CheckOut)
	assert.Equal(t, 480, rec.WorkedMinutes)
	assert.False(t, rec.EarlyOut)
	assert.Equal(t, attendance.StatusFullDay, rec.Status)
}

func TestAttendanceService_Reconcile_ConsecutiveAbsenceAlert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, sink := newTestService(testEmployee("emp-1", "morning"))

	// Three straight absent days, today's included, match the default
	// threshold.
	for i := 0; i < 3; i++ {
		_, err := attRepo.Create(ctx, attendance.Attendance{
			EmployeeID: "emp-1",
			CompanyID:  testCompanyID,
			Date:       testDay.AddDate(0, 0, -i),
			Status:     attendance.StatusAbsent,
		})
		require.NoError(t, err)
	}

	svc.now = fixedClock(at(testDay, 13, 0, 0))
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))

	var alerts int
	for _, ev := range sink.Events {
		if ev.Event == events.EventConsecutiveAbsence {
			alerts++
			assert.Equal(t, "emp-1", ev.UserID)
		}
	}
	assert.Equal(t, 1, alerts)

	// The alert re-fires on the next sweep; suppression is the subscriber's
	// concern.
	require.NoError(t, svc.Reconcile(ctx, testDay, testCompanyID))
	alerts = 0
	for _, ev := range sink.Events {
		if ev.Event == events.EventConsecutiveAbsence {
			alerts++
		}
	}
	assert.Equal(t, 2, alerts)
}

func TestAttendanceService_GetMyAttendance_RangeFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestService(testEmployee("emp-1", "morning"))

	for i := 0; i < 5; i++ {
		_, err := attRepo.Create(ctx, attendance.Attendance{
			EmployeeID: "emp-1",
			CompanyID:  testCompanyID,
			Date:       testDay.AddDate(0, 0, -i),
			Status:     attendance.StatusFullDay,
		})
		require.NoError(t, err)
	}

	svc.now = fixedClock(at(testDay, 15, 0, 0))

	filter := attendance.RangeFilter{
		StartDate: testDay.AddDate(0, 0, -2).Format("2006-01-02"),
		EndDate:   testDay.Format("2006-01-02"),
	}
	rows, err := svc.GetMyAttendance(ctx, "emp-1", testCompanyID, filter)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = svc.GetMyAttendance(ctx, "emp-1", testCompanyID, attendance.RangeFilter{StartDate: "10-03-2026"})
	assert.Error(t, err)
}
