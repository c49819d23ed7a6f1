package payroll

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/events"
	"github.com/workpulse/workpulse-backend-go/internal/repository/memory"
)

const testCompanyID = "company-1"

// Mid-March; the month label under test is "March 2026".
var payday = time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)

func testSalariedEmployee(id string) employee.Employee {
	return employee.Employee{
		ID:        id,
		CompanyID: testCompanyID,
		FullName:  "Employee " + id,
		Role:      employee.RoleEmployee,
		ShiftKey:  "morning",
		IsActive:  true,
		Salary: employee.SalaryStructure{
			Basic:         decimal.NewFromInt(30000),
			HRA:           decimal.NewFromInt(10000),
			Allowances:    decimal.NewFromInt(5000),
			PaidLeaveRate: decimal.NewFromInt(1000),
			HalfDayRate:   decimal.NewFromInt(500),
			ProvidentFund: decimal.NewFromInt(1800),
			Tax:           decimal.NewFromInt(2000),
		},
	}
}

func newTestPayrollService(emps ...employee.Employee) (*PayrollServiceImpl, *memory.AttendanceRepository, *events.CaptureSink) {
	attRepo := memory.NewAttendanceRepository()
	empRepo := memory.NewEmployeeRepository(emps...)
	sink := &events.CaptureSink{}
	svc := NewPayrollService(memory.NewPayrollRepository(), empRepo, attRepo, sink)
	svc.now = func() time.Time { return payday }
	return svc, attRepo, sink
}

func seedLeave(t *testing.T, attRepo *memory.AttendanceRepository, employeeID string, day int, status attendance.Status) {
	t.Helper()
	_, err := attRepo.Create(context.Background(), attendance.Attendance{
		EmployeeID: employeeID,
		CompanyID:  testCompanyID,
		Date:       time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
		Status:     status,
	})
	require.NoError(t, err)
}

func TestPayrollService_Generate_HalfCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	// First half of the month: two absences and one half day. The absence on
	// the 20th is outside the half window and must not count.
	seedLeave(t, attRepo, "emp-1", 3, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 9, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 12, attendance.StatusHalfDay)
	seedLeave(t, attRepo, "emp-1", 19, attendance.StatusAbsent)

	resp, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "half",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	assert.Equal(t, "March 2026", resp.MonthLabel)
	assert.Equal(t, "half", resp.PayCycle)
	assert.Equal(t, "22500", resp.GrossSalary.String())
	assert.Equal(t, 2, resp.PaidLeaveDays)
	assert.Equal(t, 1, resp.HalfDayLeaves)
	assert.Equal(t, "2500", resp.Deductions.String())
	assert.Equal(t, "20000", resp.NetPay.String())
	// Statutory deductions apply on full cycles only.
	assert.Equal(t, "0", resp.ProvidentFund.String())
	assert.Equal(t, "0", resp.Tax.String())
	assert.Equal(t, "pending", resp.PaymentStatus)
}

func TestPayrollService_Generate_FullCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	seedLeave(t, attRepo, "emp-1", 3, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 9, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 12, attendance.StatusHalfDay)
	seedLeave(t, attRepo, "emp-1", 19, attendance.StatusAbsent)

	resp, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "full",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	assert.Equal(t, "45000", resp.GrossSalary.String())
	assert.Equal(t, 3, resp.PaidLeaveDays)
	assert.Equal(t, 1, resp.HalfDayLeaves)
	// 3000 leave + 500 half-day + 1800 PF + 2000 tax.
	assert.Equal(t, "7300", resp.Deductions.String())
	assert.Equal(t, "37700", resp.NetPay.String())
}

func TestPayrollService_Generate_NetPayClampedAtZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testSalariedEmployee("emp-1")
	emp.Salary.PaidLeaveRate = decimal.NewFromInt(30000)
	svc, attRepo, _ := newTestPayrollService(emp)

	seedLeave(t, attRepo, "emp-1", 3, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 9, attendance.StatusAbsent)

	resp, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "half",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	assert.Equal(t, "60000", resp.Deductions.String())
	assert.Equal(t, "0", resp.NetPay.String())
}

func TestPayrollService_Generate_CycleExclusivity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	gen := func(payType string) error {
		_, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
			EmployeeID: "emp-1",
			PayType:    payType,
			CompanyID:  testCompanyID,
		})
		return err
	}

	// Remaining before any Half.
	assert.ErrorIs(t, gen("remaining"), payroll.ErrHalfCycleRequired)

	require.NoError(t, gen("full"))

	// Half after Full, and a second full-cycle row, are both conflicts.
	assert.ErrorIs(t, gen("half"), payroll.ErrCycleAlreadyExists)
	assert.ErrorIs(t, gen("full"), payroll.ErrCycleAlreadyExists)
	assert.ErrorIs(t, gen("remaining"), payroll.ErrCycleAlreadyExists)
}

func TestPayrollService_Generate_RemainingAfterHalf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, attRepo, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	seedLeave(t, attRepo, "emp-1", 3, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 9, attendance.StatusAbsent)
	seedLeave(t, attRepo, "emp-1", 12, attendance.StatusHalfDay)
	seedLeave(t, attRepo, "emp-1", 19, attendance.StatusAbsent)

	half, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "half",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)
	require.Equal(t, "20000", half.NetPay.String())

	remaining, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "remaining",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	// Full-month net 37700 minus the 20000 already generated.
	assert.Equal(t, "remaining", remaining.PayCycle)
	assert.Equal(t, "17700", remaining.NetPay.String())
}

func TestPayrollService_Generate_RemainingRejectedWhenNothingLeft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testSalariedEmployee("emp-1")
	// Statutory deductions alone exceed the second half of the salary.
	emp.Salary.ProvidentFund = decimal.NewFromInt(15000)
	emp.Salary.Tax = decimal.NewFromInt(10000)
	svc, _, _ := newTestPayrollService(emp)

	_, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "half",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	// Full-month net 45000-25000=20000 is below the 22500 already generated.
	_, err = svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "remaining",
		CompanyID:  testCompanyID,
	})
	assert.ErrorIs(t, err, payroll.ErrNoRemainingAmount)
}

func TestPayrollService_MarkPaid_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, sink := newTestPayrollService(testSalariedEmployee("emp-1"))

	created, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "full",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(ctx, created.ID, testCompanyID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentStatus)
	require.NotNil(t, paid.ReferenceID)
	assert.True(t, strings.HasPrefix(*paid.ReferenceID, "PAY-"))
	require.NotNil(t, paid.ProcessedBy)
	assert.Equal(t, "admin-1", *paid.ProcessedBy)

	// Replay: same row, reference id untouched, no second event.
	again, err := svc.MarkPaid(ctx, created.ID, testCompanyID, "admin-2")
	require.NoError(t, err)
	require.NotNil(t, again.ReferenceID)
	assert.Equal(t, *paid.ReferenceID, *again.ReferenceID)
	assert.Equal(t, "admin-1", *again.ProcessedBy)

	var paidEvents int
	for _, ev := range sink.Events {
		if ev.Event == events.EventPayrollPaid {
			paidEvents++
		}
	}
	assert.Equal(t, 1, paidEvents)
}

func TestPayrollService_ConfirmPayment_AppliesWebhookReference(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	created, err := svc.Generate(ctx, payroll.GeneratePayrollRequest{
		EmployeeID: "emp-1",
		PayType:    "full",
		CompanyID:  testCompanyID,
	})
	require.NoError(t, err)

	conf := payroll.PaymentConfirmation{
		PayrollID:   created.ID,
		CompanyID:   testCompanyID,
		ReferenceID: "PAY-EXTERNAL1",
		Status:      "paid",
	}

	paid, err := svc.ConfirmPayment(ctx, conf)
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentStatus)
	require.NotNil(t, paid.ReferenceID)
	assert.Equal(t, "PAY-EXTERNAL1", *paid.ReferenceID)

	// A retried webhook never changes the stored reference.
	conf.ReferenceID = "PAY-EXTERNAL2"
	replay, err := svc.ConfirmPayment(ctx, conf)
	require.NoError(t, err)
	require.NotNil(t, replay.ReferenceID)
	assert.Equal(t, "PAY-EXTERNAL1", *replay.ReferenceID)
}

func TestPayrollService_Get_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, _ := newTestPayrollService(testSalariedEmployee("emp-1"))

	_, err := svc.Get(ctx, "missing-id", testCompanyID)
	assert.ErrorIs(t, err, payroll.ErrPayrollNotFound)
}
