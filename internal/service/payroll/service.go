package payroll

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/events"
)

const monthLabelLayout = "January 2006"

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	sink           events.Sink

	now func() time.Time
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	sink events.Sink,
) *PayrollServiceImpl {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		sink:           sink,
		now:            time.Now,
	}
}

// Generate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) (payroll.PayrollResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}
	cycle, err := payroll.ParsePayCycle(req.PayType)
	if err != nil {
		return payroll.PayrollResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return payroll.PayrollResponse{}, employee.ErrEmployeeNotFound
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to load employee: %w", err)
	}

	now := s.now()
	monthLabel := now.Format(monthLabelLayout)

	existing, err := s.payrollRepo.ListByEmployeeAndMonth(ctx, emp.ID, monthLabel, req.CompanyID)
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to load payroll history: %w", err)
	}
	if err := checkCycleInvariants(cycle, existing); err != nil {
		return payroll.PayrollResponse{}, err
	}

	halfStart, halfEnd, monthStart, monthEnd := monthWindows(now)

	base := emp.Salary.BaseSalary()

	var row payroll.Payroll
	switch cycle {
	case payroll.CycleHalf:
		leaveDays, halfDays, err := s.countLeave(ctx, emp.ID, halfStart, halfEnd, req.CompanyID)
		if err != nil {
			return payroll.PayrollResponse{}, err
		}
		row = buildRow(emp, monthLabel, cycle, base.Div(decimal.NewFromInt(2)), leaveDays, halfDays, emp.Salary, false)

	case payroll.CycleFull:
		leaveDays, halfDays, err := s.countLeave(ctx, emp.ID, monthStart, monthEnd, req.CompanyID)
		if err != nil {
			return payroll.PayrollResponse{}, err
		}
		row = buildRow(emp, monthLabel, cycle, base, leaveDays, halfDays, emp.Salary, true)

	case payroll.CycleRemaining:
		leaveDays, halfDays, err := s.countLeave(ctx, emp.ID, monthStart, monthEnd, req.CompanyID)
		if err != nil {
			return payroll.PayrollResponse{}, err
		}
		row = buildRow(emp, monthLabel, cycle, base, leaveDays, halfDays, emp.Salary, true)

		paidSoFar := decimal.Zero
		for _, p := range existing {
			paidSoFar = paidSoFar.Add(p.NetPay)
		}
		remaining := row.NetPay.Sub(paidSoFar)
		if remaining.LessThanOrEqual(decimal.Zero) {
			return payroll.PayrollResponse{}, payroll.ErrNoRemainingAmount
		}
		row.NetPay = remaining
	}

	created, err := s.payrollRepo.Create(ctx, row)
	if err != nil {
		return payroll.PayrollResponse{}, fmt.Errorf("failed to create payroll record: %w", err)
	}

	resp := mapPayrollToResponse(created)
	resp.EmployeeName = emp.FullName
	return resp, nil
}

// checkCycleInvariants enforces per-(employee, month) exclusivity: one Half
// row at most, one Full-or-Remaining row at most, and Remaining only after
// Half.
func checkCycleInvariants(cycle payroll.PayCycle, existing []payroll.Payroll) error {
	var hasHalf, hasFullOrRemaining bool
	for _, p := range existing {
		switch p.PayCycle {
		case payroll.CycleHalf:
			hasHalf = true
		case payroll.CycleFull, payroll.CycleRemaining:
			hasFullOrRemaining = true
		}
	}

	switch cycle {
	case payroll.CycleHalf:
		if hasHalf || hasFullOrRemaining {
			return payroll.ErrCycleAlreadyExists
		}
	case payroll.CycleFull:
		if hasFullOrRemaining {
			return payroll.ErrCycleAlreadyExists
		}
	case payroll.CycleRemaining:
		if hasFullOrRemaining {
			return payroll.ErrCycleAlreadyExists
		}
		if !hasHalf {
			return payroll.ErrHalfCycleRequired
		}
	}
	return nil
}

// monthWindows returns the half window (days 1-15) and the full-month window
// for the instant's month. The half window is fixed regardless of when in the
// month the cycle is requested.
func monthWindows(now time.Time) (halfStart, halfEnd, monthStart, monthEnd time.Time) {
	monthStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd = monthStart.AddDate(0, 1, -1)
	halfStart = monthStart
	halfEnd = time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, now.Location())
	return
}

func (s *PayrollServiceImpl) countLeave(ctx context.Context, employeeID string, from, to time.Time, companyID string) (leaveDays, halfDays int, err error) {
	records, err := s.attendanceRepo.ListByEmployeeAndRange(ctx, employeeID, from, to, companyID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load attendance window: %w", err)
	}
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusAbsent:
			leaveDays++
		case attendance.StatusHalfDay:
			halfDays++
		}
	}
	return leaveDays, halfDays, nil
}

// buildRow assembles a pending row: gross minus leave and half-day deductions,
// plus provident fund and tax on full-cycle rows, with the net clamped at zero.
func buildRow(emp employee.Employee, monthLabel string, cycle payroll.PayCycle, gross decimal.Decimal, leaveDays, halfDays int, salary employee.SalaryStructure, withStatutory bool) payroll.Payroll {
	leaveDeduction := salary.PaidLeaveRate.Mul(decimal.NewFromInt(int64(leaveDays)))
	halfDayDeduction := salary.HalfDayRate.Mul(decimal.NewFromInt(int64(halfDays)))

	deductions := leaveDeduction.Add(halfDayDeduction)
	pf := decimal.Zero
	tax := decimal.Zero
	if withStatutory {
		pf = salary.ProvidentFund
		tax = salary.Tax
		deductions = deductions.Add(pf).Add(tax)
	}

	net := gross.Sub(deductions)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return payroll.Payroll{
		EmployeeID:       emp.ID,
		CompanyID:        emp.CompanyID,
		MonthLabel:       monthLabel,
		PayCycle:         cycle,
		GrossSalary:      gross,
		Deductions:       deductions,
		NetPay:           net,
		PaidLeaveDays:    leaveDays,
		HalfDayLeaves:    halfDays,
		LeaveDeduction:   leaveDeduction,
		HalfDayDeduction: halfDayDeduction,
		ProvidentFund:    pf,
		Tax:              tax,
		PaymentStatus:    payroll.PaymentStatusPending,
	}
}

// Get implements payroll.PayrollService.
func (s *PayrollServiceImpl) Get(ctx context.Context, id, companyID string) (payroll.PayrollResponse, error) {
	row, err := s.payrollRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollNotFound) {
			return payroll.PayrollResponse{}, payroll.ErrPayrollNotFound
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to load payroll record: %w", err)
	}
	return mapPayrollToResponse(row), nil
}

// ListMonth implements payroll.PayrollService. An empty label means the
// current month.
func (s *PayrollServiceImpl) ListMonth(ctx context.Context, monthLabel, companyID string) ([]payroll.PayrollResponse, error) {
	if monthLabel == "" {
		monthLabel = s.now().Format(monthLabelLayout)
	}

	rows, err := s.payrollRepo.ListByMonth(ctx, monthLabel, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll records: %w", err)
	}

	responses := make([]payroll.PayrollResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, mapPayrollToResponse(row))
	}
	return responses, nil
}

// MarkPaid implements payroll.PayrollService. The repository write is
// conditional on the row still being pending; a replay finds it paid and
// returns it unchanged.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, id, companyID, processedBy string) (payroll.PayrollResponse, error) {
	return s.markPaid(ctx, id, companyID, processedBy, "")
}

// ConfirmPayment implements payroll.PayrollService. The signature has already
// been verified at the transport boundary.
func (s *PayrollServiceImpl) ConfirmPayment(ctx context.Context, conf payroll.PaymentConfirmation) (payroll.PayrollResponse, error) {
	if err := conf.Validate(); err != nil {
		return payroll.PayrollResponse{}, err
	}
	return s.markPaid(ctx, conf.PayrollID, conf.CompanyID, "webhook", conf.ReferenceID)
}

func (s *PayrollServiceImpl) markPaid(ctx context.Context, id, companyID, processedBy, referenceID string) (payroll.PayrollResponse, error) {
	row, err := s.payrollRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollNotFound) {
			return payroll.PayrollResponse{}, payroll.ErrPayrollNotFound
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to load payroll record: %w", err)
	}

	if row.PaymentStatus == payroll.PaymentStatusPaid {
		return mapPayrollToResponse(row), nil
	}

	now := s.now()
	row.PaymentStatus = payroll.PaymentStatusPaid
	row.PaidOn = &now
	row.ProcessedBy = &processedBy

	// A reference id, once assigned, is never overwritten.
	if row.ReferenceID == nil || *row.ReferenceID == "" {
		ref := referenceID
		if ref == "" {
			ref = newReferenceID(now)
		}
		row.ReferenceID = &ref
	}

	updated, err := s.payrollRepo.MarkPaid(ctx, row)
	if err != nil {
		// A concurrent transition won the conditional write; re-read and
		// return its result, same as any other replay.
		if errors.Is(err, payroll.ErrAlreadyPaid) {
			current, rerr := s.payrollRepo.GetByID(ctx, id, companyID)
			if rerr != nil {
				return payroll.PayrollResponse{}, fmt.Errorf("failed to reload payroll record: %w", rerr)
			}
			return mapPayrollToResponse(current), nil
		}
		return payroll.PayrollResponse{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}

	resp := mapPayrollToResponse(updated)
	s.sink.Emit(events.EventPayrollPaid, updated.EmployeeID, resp)

	return resp, nil
}

// newReferenceID mints a time-based token, e.g. "PAY-LX3K9Q2M1".
func newReferenceID(now time.Time) string {
	return "PAY-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
}

// mapPayrollToResponse converts a Payroll entity to PayrollResponse
func mapPayrollToResponse(p payroll.Payroll) payroll.PayrollResponse {
	var employeeName string
	if p.EmployeeName != nil {
		employeeName = *p.EmployeeName
	}

	var paidOn *string
	if p.PaidOn != nil {
		formatted := p.PaidOn.Format("2006-01-02 15:04:05")
		paidOn = &formatted
	}

	return payroll.PayrollResponse{
		ID:               p.ID,
		EmployeeID:       p.EmployeeID,
		EmployeeName:     employeeName,
		MonthLabel:       p.MonthLabel,
		PayCycle:         string(p.PayCycle),
		GrossSalary:      p.GrossSalary,
		Deductions:       p.Deductions,
		NetPay:           p.NetPay,
		PaidLeaveDays:    p.PaidLeaveDays,
		HalfDayLeaves:    p.HalfDayLeaves,
		LeaveDeduction:   p.LeaveDeduction,
		HalfDayDeduction: p.HalfDayDeduction,
		ProvidentFund:    p.ProvidentFund,
		Tax:              p.Tax,
		PaymentStatus:    string(p.PaymentStatus),
		ReferenceID:      p.ReferenceID,
		PaidOn:           paidOn,
		ProcessedBy:      p.ProcessedBy,
	}
}
