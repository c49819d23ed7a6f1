package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
)

// PolicyRepository keeps one policy per company in memory.
type PolicyRepository struct {
	mu   sync.Mutex
	rows map[string]policy.AttendancePolicy
}

func NewPolicyRepository() *PolicyRepository {
	return &PolicyRepository{rows: make(map[string]policy.AttendancePolicy)}
}

func (r *PolicyRepository) GetByCompanyID(_ context.Context, companyID string) (policy.AttendancePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.rows[companyID]
	if !ok {
		return policy.AttendancePolicy{}, policy.ErrPolicyNotFound
	}
	return p, nil
}

func (r *PolicyRepository) Upsert(_ context.Context, p policy.AttendancePolicy) (policy.AttendancePolicy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.rows[p.CompanyID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		p.ID = uuid.NewString()
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.rows[p.CompanyID] = p
	return p, nil
}
