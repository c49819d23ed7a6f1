package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/database"
)

const uniqueViolationCode = "23505"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, company_id, date,
	check_in, check_out, worked_minutes,
	late_in, early_out, overtime_minutes,
	status, created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
		&att.CheckIn, &att.CheckOut, &att.WorkedMinutes,
		&att.LateIn, &att.EarlyOut, &att.OvertimeMinutes,
		&att.Status, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository. The unique index on
// (employee_id, date, company_id) arbitrates concurrent check-ins; the loser
// gets ErrDuplicateRecord.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date, check_in, check_out,
			worked_minutes, late_in, early_out, overtime_minutes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		att.EmployeeID,
		att.CompanyID,
		att.Date,
		att.CheckIn,
		att.CheckOut,
		att.WorkedMinutes,
		att.LateIn,
		att.EarlyOut,
		att.OvertimeMinutes,
		att.Status,
	).Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2 AND company_id = $3
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository. Writes every mutable
// field of a non-terminal row; the WHERE clause keeps a closed row closed.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2, worked_minutes = $3, late_in = $4,
			early_out = $5, overtime_minutes = $6, status = $7, updated_at = NOW()
		WHERE id = $8 AND company_id = $9 AND check_out IS NULL
	`

	tag, err := q.Exec(ctx, query,
		att.CheckIn,
		att.CheckOut,
		att.WorkedMinutes,
		att.LateIn,
		att.EarlyOut,
		att.OvertimeMinutes,
		att.Status,
		att.ID,
		att.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows)
}

// ListByDate implements attendance.AttendanceRepository. Includes the
// employee's name for listing screens.
func (a *attendanceRepository) ListByDate(ctx context.Context, date time.Time, companyID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT a.id, a.employee_id, a.company_id, a.date,
			   a.check_in, a.check_out, a.worked_minutes,
			   a.late_in, a.early_out, a.overtime_minutes,
			   a.status, a.created_at, a.updated_at, e.full_name
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date = $1 AND a.company_id = $2
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query, date, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.Attendance
	for rows.Next() {
		var att attendance.Attendance
		err := rows.Scan(
			&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
			&att.CheckIn, &att.CheckOut, &att.WorkedMinutes,
			&att.LateIn, &att.EarlyOut, &att.OvertimeMinutes,
			&att.Status, &att.CreatedAt, &att.UpdatedAt, &att.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDate(ctx context.Context, date time.Time, companyID string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1 AND company_id = $2 AND check_in IS NOT NULL AND check_out IS NULL
	`

	rows, err := q.Query(ctx, query, date, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance: %w", err)
	}
	defer rows.Close()

	return collectAttendances(rows)
}

// CountLateSince implements attendance.AttendanceRepository.
func (a *attendanceRepository) CountLateSince(ctx context.Context, employeeID string, from, to time.Time, companyID string) (int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT COUNT(*)
		FROM attendances
		WHERE employee_id = $1 AND company_id = $2
		  AND late_in = TRUE AND date BETWEEN $3 AND $4
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, companyID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count late check-ins: %w", err)
	}
	return count, nil
}

// BulkCreateAbsences implements attendance.AttendanceRepository. ON CONFLICT
// DO NOTHING keeps the job idempotent against rows created since the roster
// snapshot.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, records []attendance.Attendance) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, company_id, date, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (employee_id, date, company_id) DO NOTHING
	`

	inserted := 0
	for _, att := range records {
		tag, err := q.Exec(ctx, query, att.EmployeeID, att.CompanyID, att.Date, att.Status)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert absence: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, att)
	}
	return out, rows.Err()
}
