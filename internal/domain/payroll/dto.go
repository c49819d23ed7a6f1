package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/validator"
)

type GeneratePayrollRequest struct {
	EmployeeID string `json:"employee_id"`
	PayType    string `json:"pay_type"`
	CompanyID  string `json:"-"`
}

func (r GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsInSlice(r.PayType, []string{string(CycleHalf), string(CycleFull), string(CycleRemaining)}) {
		errs = append(errs, validator.ValidationError{Field: "pay_type", Message: "pay_type must be one of half, full, remaining"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PaymentConfirmation is the parsed body of a signed payment webhook.
type PaymentConfirmation struct {
	PayrollID   string `json:"payroll_id"`
	CompanyID   string `json:"company_id"`
	ReferenceID string `json:"reference_id,omitempty"`
	Status      string `json:"status"`
}

func (c PaymentConfirmation) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(c.PayrollID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_id", Message: "payroll_id is required"})
	}
	if validator.IsEmpty(c.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollResponse struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employee_id"`
	EmployeeName     string          `json:"employee_name,omitempty"`
	MonthLabel       string          `json:"month_label"`
	PayCycle         string          `json:"pay_cycle"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	Deductions       decimal.Decimal `json:"deductions"`
	NetPay           decimal.Decimal `json:"net_pay"`
	PaidLeaveDays    int             `json:"paid_leave_days"`
	HalfDayLeaves    int             `json:"half_day_leaves"`
	LeaveDeduction   decimal.Decimal `json:"leave_deduction"`
	HalfDayDeduction decimal.Decimal `json:"half_day_deduction"`
	ProvidentFund    decimal.Decimal `json:"provident_fund"`
	Tax              decimal.Decimal `json:"tax"`
	PaymentStatus    string          `json:"payment_status"`
	ReferenceID      *string         `json:"reference_id"`
	PaidOn           *string         `json:"paid_on"`
	ProcessedBy      *string         `json:"processed_by"`
}
