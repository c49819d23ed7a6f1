package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend-go/internal/domain/attendance"
)

// AttendanceRepository is an in-memory attendance.AttendanceRepository with
// the same uniqueness semantics as the SQL implementation. Used by tests and
// usable as a throwaway backend.
type AttendanceRepository struct {
	mu   sync.Mutex
	rows map[string]attendance.Attendance
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{rows: make(map[string]attendance.Attendance)}
}

func attendanceKey(employeeID string, date time.Time, companyID string) string {
	return companyID + "|" + employeeID + "|" + date.Format("2006-01-02")
}

func (r *AttendanceRepository) Create(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attendanceKey(att.EmployeeID, att.Date, att.CompanyID)
	if _, exists := r.rows[key]; exists {
		return attendance.Attendance{}, attendance.ErrDuplicateRecord
	}

	att.ID = uuid.NewString()
	now := time.Now()
	att.CreatedAt = now
	att.UpdatedAt = now
	r.rows[key] = att
	return att, nil
}

func (r *AttendanceRepository) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, companyID string) (*attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	att, ok := r.rows[attendanceKey(employeeID, date, companyID)]
	if !ok {
		return nil, nil
	}
	return &att, nil
}

func (r *AttendanceRepository) Update(_ context.Context, att attendance.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := attendanceKey(att.EmployeeID, att.Date, att.CompanyID)
	existing, ok := r.rows[key]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}

	att.CreatedAt = existing.CreatedAt
	att.UpdatedAt = time.Now()
	r.rows[key] = att
	return nil
}

func (r *AttendanceRepository) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time, companyID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []attendance.Attendance
	for _, att := range r.rows {
		if att.EmployeeID != employeeID || att.CompanyID != companyID {
			continue
		}
		if att.Date.Before(from) || att.Date.After(to) {
			continue
		}
		out = append(out, att)
	}
	sortByDate(out)
	return out, nil
}

func (r *AttendanceRepository) ListByDate(_ context.Context, date time.Time, companyID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []attendance.Attendance
	for _, att := range r.rows {
		if att.CompanyID == companyID && att.Date.Equal(date) {
			out = append(out, att)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *AttendanceRepository) ListOpenByDate(_ context.Context, date time.Time, companyID string) ([]attendance.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []attendance.Attendance
	for _, att := range r.rows {
		if att.CompanyID == companyID && att.Date.Equal(date) && att.Open() {
			out = append(out, att)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (r *AttendanceRepository) CountLateSince(_ context.Context, employeeID string, from, to time.Time, companyID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, att := range r.rows {
		if att.EmployeeID != employeeID || att.CompanyID != companyID || !att.LateIn {
			continue
		}
		if att.Date.Before(from) || att.Date.After(to) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *AttendanceRepository) BulkCreateAbsences(_ context.Context, records []attendance.Attendance) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	now := time.Now()
	for _, att := range records {
		key := attendanceKey(att.EmployeeID, att.Date, att.CompanyID)
		if _, exists := r.rows[key]; exists {
			continue
		}
		att.ID = uuid.NewString()
		att.CreatedAt = now
		att.UpdatedAt = now
		r.rows[key] = att
		inserted++
	}
	return inserted, nil
}

func sortByDate(rows []attendance.Attendance) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
}
