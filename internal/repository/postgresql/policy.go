package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/database"
)

// policyRepository stores one policy per company as a JSONB document. The
// shape evolves with the policy struct without schema migrations; the
// resolver backfills anything an older document lacks.
type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}

type shiftRuleDoc struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BreakMinutes int    `json:"break_minutes"`
	BreakPaid    bool   `json:"break_paid"`
	GraceMinutes int    `json:"grace_minutes"`
}

type policyDoc struct {
	ShiftType string                  `json:"shift_type"`
	Shifts    map[string]shiftRuleDoc `json:"shifts"`
	Flexible  struct {
		RequiredHours int `json:"required_hours"`
		GraceMinutes  int `json:"grace_minutes"`
	} `json:"flexible"`
	Overtime struct {
		Enabled           bool    `json:"enabled"`
		StartAfterMinutes int     `json:"start_after_minutes"`
		RateMultiplier    float64 `json:"rate_multiplier"`
	} `json:"overtime"`
	Late struct {
		Enabled            bool `json:"enabled"`
		LateToHalfDayCount int  `json:"late_to_half_day_count"`
	} `json:"late"`
	EarlyOut struct {
		Enabled         bool `json:"enabled"`
		DeductByMinutes bool `json:"deduct_by_minutes"`
	} `json:"early_out"`
	MinHalfDayHours        float64 `json:"min_half_day_hours"`
	MinFullDayHours        float64 `json:"min_full_day_hours"`
	AbsentCutoff           string  `json:"absent_cutoff"`
	ConsecutiveAbsenceDays int     `json:"consecutive_absence_days"`
}

func toPolicyDoc(p policy.AttendancePolicy) policyDoc {
	var doc policyDoc
	doc.ShiftType = string(p.ShiftType)
	doc.Shifts = make(map[string]shiftRuleDoc, len(p.Shifts))
	for key, rule := range p.Shifts {
		doc.Shifts[key] = shiftRuleDoc(rule)
	}
	doc.Flexible.RequiredHours = p.Flexible.RequiredHours
	doc.Flexible.GraceMinutes = p.Flexible.GraceMinutes
	doc.Overtime.Enabled = p.Overtime.Enabled
	doc.Overtime.StartAfterMinutes = p.Overtime.StartAfterMinutes
	doc.Overtime.RateMultiplier = p.Overtime.RateMultiplier
	doc.Late.Enabled = p.Late.Enabled
	doc.Late.LateToHalfDayCount = p.Late.LateToHalfDayCount
	doc.EarlyOut.Enabled = p.EarlyOut.Enabled
	doc.EarlyOut.DeductByMinutes = p.EarlyOut.DeductByMinutes
	doc.MinHalfDayHours = p.MinHalfDayHours
	doc.MinFullDayHours = p.MinFullDayHours
	doc.AbsentCutoff = p.AbsentCutoff
	doc.ConsecutiveAbsenceDays = p.ConsecutiveAbsenceDays
	return doc
}

func fromPolicyDoc(doc policyDoc, p *policy.AttendancePolicy) {
	p.ShiftType = policy.ShiftType(doc.ShiftType)
	p.Shifts = make(map[string]policy.ShiftRule, len(doc.Shifts))
	for key, rule := range doc.Shifts {
		p.Shifts[key] = policy.ShiftRule(rule)
	}
	p.Flexible = policy.FlexibleRule{RequiredHours: doc.Flexible.RequiredHours, GraceMinutes: doc.Flexible.GraceMinutes}
	p.Overtime = policy.OvertimeRule{Enabled: doc.Overtime.Enabled, StartAfterMinutes: doc.Overtime.StartAfterMinutes, RateMultiplier: doc.Overtime.RateMultiplier}
	p.Late = policy.LateRule{Enabled: doc.Late.Enabled, LateToHalfDayCount: doc.Late.LateToHalfDayCount}
	p.EarlyOut = policy.EarlyOutRule{Enabled: doc.EarlyOut.Enabled, DeductByMinutes: doc.EarlyOut.DeductByMinutes}
	p.MinHalfDayHours = doc.MinHalfDayHours
	p.MinFullDayHours = doc.MinFullDayHours
	p.AbsentCutoff = doc.AbsentCutoff
	p.ConsecutiveAbsenceDays = doc.ConsecutiveAbsenceDays
}

// GetByCompanyID implements policy.PolicyRepository.
func (r *policyRepository) GetByCompanyID(ctx context.Context, companyID string) (policy.AttendancePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, document, created_at, updated_at
		FROM attendance_policies
		WHERE company_id = $1
	`

	var p policy.AttendancePolicy
	var raw []byte
	err := q.QueryRow(ctx, query, companyID).Scan(&p.ID, &p.CompanyID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.AttendancePolicy{}, policy.ErrPolicyNotFound
		}
		return policy.AttendancePolicy{}, fmt.Errorf("failed to get policy: %w", err)
	}

	var doc policyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return policy.AttendancePolicy{}, fmt.Errorf("failed to decode policy document: %w", err)
	}
	fromPolicyDoc(doc, &p)
	return p, nil
}

// Upsert implements policy.PolicyRepository.
func (r *policyRepository) Upsert(ctx context.Context, p policy.AttendancePolicy) (policy.AttendancePolicy, error) {
	q := GetQuerier(ctx, r.db)

	raw, err := json.Marshal(toPolicyDoc(p))
	if err != nil {
		return policy.AttendancePolicy{}, fmt.Errorf("failed to encode policy document: %w", err)
	}

	query := `
		INSERT INTO attendance_policies (company_id, document)
		VALUES ($1, $2)
		ON CONFLICT (company_id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query, p.CompanyID, raw).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return policy.AttendancePolicy{}, fmt.Errorf("failed to upsert policy: %w", err)
	}
	return p, nil
}
