package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayCycle is which portion of a month a payroll row covers.
type PayCycle string

const (
	CycleHalf      PayCycle = "half"
	CycleFull      PayCycle = "full"
	CycleRemaining PayCycle = "remaining"
)

func ParsePayCycle(s string) (PayCycle, error) {
	switch PayCycle(s) {
	case CycleHalf, CycleFull, CycleRemaining:
		return PayCycle(s), nil
	}
	return "", ErrInvalidPayCycle
}

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Payroll is one generated pay row. For a given (employee, month) at most one
// Half row and at most one Full-or-Remaining row may exist, and Remaining
// requires an existing Half row.
type Payroll struct {
	ID         string
	EmployeeID string
	CompanyID  string

	// MonthLabel is the human-readable month the row covers, e.g. "January 2026".
	MonthLabel string
	PayCycle   PayCycle

	GrossSalary decimal.Decimal
	Deductions  decimal.Decimal
	NetPay      decimal.Decimal

	PaidLeaveDays    int
	HalfDayLeaves    int
	LeaveDeduction   decimal.Decimal
	HalfDayDeduction decimal.Decimal
	ProvidentFund    decimal.Decimal
	Tax              decimal.Decimal

	PaymentStatus PaymentStatus
	ReferenceID   *string
	PaidOn        *time.Time
	ProcessedBy   *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Joined fields
	EmployeeName *string
}
