package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/database"
)

// employeeRepository reads the roster. The engine never writes employees;
// employee management lives in another subsystem sharing the database.
type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, company_id, full_name, role, shift_key, shift_type,
	salary_basic, salary_hra, salary_allowances, salary_overtime_rate,
	salary_paid_leave_rate, salary_half_day_rate, salary_provident_fund, salary_tax,
	is_active, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.CompanyID, &emp.FullName, &emp.Role, &emp.ShiftKey, &emp.ShiftType,
		&emp.Salary.Basic, &emp.Salary.HRA, &emp.Salary.Allowances, &emp.Salary.OvertimeRate,
		&emp.Salary.PaidLeaveRate, &emp.Salary.HalfDayRate, &emp.Salary.ProvidentFund, &emp.Salary.Tax,
		&emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2
	`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListAttendanceEligible implements employee.EmployeeRepository.
func (r *employeeRepository) ListAttendanceEligible(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND is_active = TRUE
		  AND role IN ('employee', 'team_leader', 'hr')
		ORDER BY full_name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

// ListCompanyIDs implements employee.EmployeeRepository.
func (r *employeeRepository) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT company_id
		FROM employees
		WHERE is_active = TRUE
		ORDER BY company_id ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
