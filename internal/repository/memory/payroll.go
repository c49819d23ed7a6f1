package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
)

// PayrollRepository is an in-memory payroll.PayrollRepository. MarkPaid keeps
// the conditional-write contract of the SQL implementation.
type PayrollRepository struct {
	mu   sync.Mutex
	rows map[string]payroll.Payroll
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{rows: make(map[string]payroll.Payroll)}
}

func (r *PayrollRepository) Create(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.rows[p.ID] = p
	return p, nil
}

func (r *PayrollRepository) GetByID(_ context.Context, id string, companyID string) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[id]
	if !ok || p.CompanyID != companyID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r *PayrollRepository) ListByEmployeeAndMonth(_ context.Context, employeeID, monthLabel, companyID string) ([]payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []payroll.Payroll
	for _, p := range r.rows {
		if p.EmployeeID == employeeID && p.MonthLabel == monthLabel && p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PayrollRepository) ListByMonth(_ context.Context, monthLabel, companyID string) ([]payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []payroll.Payroll
	for _, p := range r.rows {
		if p.MonthLabel == monthLabel && p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PayrollRepository) MarkPaid(_ context.Context, p payroll.Payroll) (payroll.Payroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rows[p.ID]
	if !ok || existing.CompanyID != p.CompanyID {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	if existing.PaymentStatus != payroll.PaymentStatusPending {
		return payroll.Payroll{}, payroll.ErrAlreadyPaid
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	r.rows[p.ID] = p
	return p, nil
}
