package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const payrollColumns = `
	id, employee_id, company_id, month_label, pay_cycle,
	gross_salary, deductions, net_pay,
	paid_leave_days, half_day_leaves, leave_deduction, half_day_deduction,
	provident_fund, tax,
	payment_status, reference_id, paid_on, processed_by,
	created_at, updated_at
`

func scanPayroll(row pgx.Row) (payroll.Payroll, error) {
	var p payroll.Payroll
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.CompanyID, &p.MonthLabel, &p.PayCycle,
		&p.GrossSalary, &p.Deductions, &p.NetPay,
		&p.PaidLeaveDays, &p.HalfDayLeaves, &p.LeaveDeduction, &p.HalfDayDeduction,
		&p.ProvidentFund, &p.Tax,
		&p.PaymentStatus, &p.ReferenceID, &p.PaidOn, &p.ProcessedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements payroll.PayrollRepository.
func (r *payrollRepository) Create(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payrolls (
			employee_id, company_id, month_label, pay_cycle,
			gross_salary, deductions, net_pay,
			paid_leave_days, half_day_leaves, leave_deduction, half_day_deduction,
			provident_fund, tax, payment_status, reference_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		p.EmployeeID,
		p.CompanyID,
		p.MonthLabel,
		p.PayCycle,
		p.GrossSalary,
		p.Deductions,
		p.NetPay,
		p.PaidLeaveDays,
		p.HalfDayLeaves,
		p.LeaveDeduction,
		p.HalfDayDeduction,
		p.ProvidentFund,
		p.Tax,
		p.PaymentStatus,
		p.ReferenceID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return payroll.Payroll{}, fmt.Errorf("failed to create payroll: %w", err)
	}

	return p, nil
}

// GetByID implements payroll.PayrollRepository.
func (r *payrollRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE id = $1 AND company_id = $2
	`

	p, err := scanPayroll(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Payroll{}, payroll.ErrPayrollNotFound
		}
		return payroll.Payroll{}, fmt.Errorf("failed to get payroll: %w", err)
	}
	return p, nil
}

// ListByEmployeeAndMonth implements payroll.PayrollRepository.
func (r *payrollRepository) ListByEmployeeAndMonth(ctx context.Context, employeeID, monthLabel, companyID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollColumns + `
		FROM payrolls
		WHERE employee_id = $1 AND month_label = $2 AND company_id = $3
		ORDER BY created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, monthLabel, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	return collectPayrolls(rows)
}

// ListByMonth implements payroll.PayrollRepository. Includes the employee name
// for listing screens.
func (r *payrollRepository) ListByMonth(ctx context.Context, monthLabel, companyID string) ([]payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.employee_id, p.company_id, p.month_label, p.pay_cycle,
			   p.gross_salary, p.deductions, p.net_pay,
			   p.paid_leave_days, p.half_day_leaves, p.leave_deduction, p.half_day_deduction,
			   p.provident_fund, p.tax,
			   p.payment_status, p.reference_id, p.paid_on, p.processed_by,
			   p.created_at, p.updated_at, e.full_name
		FROM payrolls p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.month_label = $1 AND p.company_id = $2
		ORDER BY e.full_name ASC, p.created_at ASC
	`

	rows, err := q.Query(ctx, query, monthLabel, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payrolls: %w", err)
	}
	defer rows.Close()

	var out []payroll.Payroll
	for rows.Next() {
		var p payroll.Payroll
		err := rows.Scan(
			&p.ID, &p.EmployeeID, &p.CompanyID, &p.MonthLabel, &p.PayCycle,
			&p.GrossSalary, &p.Deductions, &p.NetPay,
			&p.PaidLeaveDays, &p.HalfDayLeaves, &p.LeaveDeduction, &p.HalfDayDeduction,
			&p.ProvidentFund, &p.Tax,
			&p.PaymentStatus, &p.ReferenceID, &p.PaidOn, &p.ProcessedBy,
			&p.CreatedAt, &p.UpdatedAt, &p.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkPaid implements payroll.PayrollRepository. The status predicate makes
// the write conditional: a row that is no longer pending is left untouched and
// reported as ErrAlreadyPaid.
func (r *payrollRepository) MarkPaid(ctx context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payrolls
		SET payment_status = $1, reference_id = $2, paid_on = $3,
			processed_by = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6 AND payment_status = 'pending'
		RETURNING ` + payrollColumns + `
	`

	updated, err := scanPayroll(q.QueryRow(ctx, query,
		p.PaymentStatus,
		p.ReferenceID,
		p.PaidOn,
		p.ProcessedBy,
		p.ID,
		p.CompanyID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a lost race from a bad id.
			if _, getErr := r.GetByID(ctx, p.ID, p.CompanyID); getErr != nil {
				return payroll.Payroll{}, getErr
			}
			return payroll.Payroll{}, payroll.ErrAlreadyPaid
		}
		return payroll.Payroll{}, fmt.Errorf("failed to mark payroll paid: %w", err)
	}
	return updated, nil
}

func collectPayrolls(rows pgx.Rows) ([]payroll.Payroll, error) {
	var out []payroll.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
