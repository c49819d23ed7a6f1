package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/workpulse/workpulse-backend-go/internal/domain/employee"
)

// EmployeeRepository is an in-memory roster, seeded up front by tests.
type EmployeeRepository struct {
	mu   sync.Mutex
	rows map[string]employee.Employee
}

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{rows: make(map[string]employee.Employee)}
	for _, emp := range seed {
		r.rows[emp.ID] = emp
	}
	return r
}

func (r *EmployeeRepository) Put(emp employee.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[emp.ID] = emp
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	emp, ok := r.rows[id]
	if !ok || emp.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (r *EmployeeRepository) ListCompanyIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]struct{}{}
	var out []string
	for _, emp := range r.rows {
		if !emp.IsActive {
			continue
		}
		if _, ok := seen[emp.CompanyID]; ok {
			continue
		}
		seen[emp.CompanyID] = struct{}{}
		out = append(out, emp.CompanyID)
	}
	sort.Strings(out)
	return out, nil
}

func (r *EmployeeRepository) ListAttendanceEligible(_ context.Context, companyID string) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []employee.Employee
	for _, emp := range r.rows {
		if emp.CompanyID == companyID && emp.IsActive && emp.Role.AttendanceEligible() {
			out = append(out, emp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
