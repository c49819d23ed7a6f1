package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/validator"
)

type PolicyResolverImpl struct {
	repo policy.PolicyRepository
}

func NewPolicyResolver(repo policy.PolicyRepository) policy.PolicyResolver {
	return &PolicyResolverImpl{repo: repo}
}

// Resolve implements policy.PolicyResolver. A missing persisted policy is a
// valid state and resolves to the built-in default.
func (r *PolicyResolverImpl) Resolve(ctx context.Context, companyID string) (policy.AttendancePolicy, error) {
	if r.repo == nil || companyID == "" {
		return policy.Default(), nil
	}

	p, err := r.repo.GetByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, policy.ErrPolicyNotFound) {
			def := policy.Default()
			def.CompanyID = companyID
			return def, nil
		}
		return policy.AttendancePolicy{}, fmt.Errorf("failed to load attendance policy: %w", err)
	}

	normalize(&p)
	return p, nil
}

// Upsert implements policy.PolicyResolver.
func (r *PolicyResolverImpl) Upsert(ctx context.Context, p policy.AttendancePolicy) (policy.AttendancePolicy, error) {
	if err := validate(p); err != nil {
		return policy.AttendancePolicy{}, err
	}
	normalize(&p)

	saved, err := r.repo.Upsert(ctx, p)
	if err != nil {
		return policy.AttendancePolicy{}, fmt.Errorf("failed to save attendance policy: %w", err)
	}
	return saved, nil
}

// normalize backfills fields a partially-configured policy leaves at their
// zero value so downstream math never divides by or compares against zero.
func normalize(p *policy.AttendancePolicy) {
	def := policy.Default()

	if p.ShiftType == "" {
		p.ShiftType = def.ShiftType
	}
	if len(p.Shifts) == 0 {
		p.Shifts = def.Shifts
	}
	if p.Flexible.RequiredHours <= 0 {
		p.Flexible.RequiredHours = def.Flexible.RequiredHours
	}
	if p.MinHalfDayHours <= 0 {
		p.MinHalfDayHours = def.MinHalfDayHours
	}
	if p.MinFullDayHours <= 0 {
		p.MinFullDayHours = def.MinFullDayHours
	}
	if p.AbsentCutoff == "" {
		p.AbsentCutoff = def.AbsentCutoff
	}
	if p.ConsecutiveAbsenceDays <= 0 {
		p.ConsecutiveAbsenceDays = def.ConsecutiveAbsenceDays
	}
	if p.Late.Enabled && p.Late.LateToHalfDayCount <= 0 {
		p.Late.LateToHalfDayCount = def.Late.LateToHalfDayCount
	}
	if p.Overtime.Enabled && p.Overtime.RateMultiplier <= 0 {
		p.Overtime.RateMultiplier = def.Overtime.RateMultiplier
	}
}

func validate(p policy.AttendancePolicy) error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.CompanyID) {
		errs = append(errs, validator.ValidationError{Field: "company_id", Message: "company_id is required"})
	}
	for key, rule := range p.Shifts {
		if !validator.IsValidClock(rule.Start) {
			errs = append(errs, validator.ValidationError{Field: "shifts." + key + ".start", Message: "must be HH:MM"})
		}
		if !validator.IsValidClock(rule.End) {
			errs = append(errs, validator.ValidationError{Field: "shifts." + key + ".end", Message: "must be HH:MM"})
		}
	}
	if p.AbsentCutoff != "" && !validator.IsValidClock(p.AbsentCutoff) {
		errs = append(errs, validator.ValidationError{Field: "absent_cutoff", Message: "must be HH:MM"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
