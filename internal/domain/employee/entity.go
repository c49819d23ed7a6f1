package employee

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
)

// EmploymentRole is the employee's position in the org chart. Authorization is
// handled elsewhere; the engine only uses roles to decide workforce
// eligibility, via AttendanceEligible.
type EmploymentRole string

const (
	RoleEmployee   EmploymentRole = "employee"
	RoleTeamLeader EmploymentRole = "team_leader"
	RoleHR         EmploymentRole = "hr"
	RoleAdmin      EmploymentRole = "admin"
)

// AttendanceEligible reports whether this role is part of the tracked
// workforce. Admins own the company account and are not tracked.
func (r EmploymentRole) AttendanceEligible() bool {
	switch r {
	case RoleEmployee, RoleTeamLeader, RoleHR:
		return true
	}
	return false
}

// SalaryStructure is the per-employee pay configuration consumed by the
// payroll calculator. All amounts are monthly figures.
type SalaryStructure struct {
	Basic        decimal.Decimal
	HRA          decimal.Decimal
	Allowances   decimal.Decimal
	OvertimeRate decimal.Decimal

	// Per-day deduction rates.
	PaidLeaveRate decimal.Decimal
	HalfDayRate   decimal.Decimal

	// Per-month statutory deductions, applied on Full/Remaining cycles.
	ProvidentFund decimal.Decimal
	Tax           decimal.Decimal
}

// BaseSalary is basic + hra + allowances.
func (s SalaryStructure) BaseSalary() decimal.Decimal {
	return s.Basic.Add(s.HRA).Add(s.Allowances)
}

// Employee is the roster view the engine consumes. It is owned by the
// employee-management subsystem; the engine reads these fields only.
type Employee struct {
	ID        string
	CompanyID string
	FullName  string
	Role      EmploymentRole
	ShiftKey  string
	ShiftType policy.ShiftType
	Salary    SalaryStructure
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
