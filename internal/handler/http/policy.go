package http

import (
	"encoding/json"
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/domain/policy"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/middleware"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
)

type PolicyHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
}

type policyHandlerImpl struct {
	policyResolver policy.PolicyResolver
}

func NewPolicyHandler(policyResolver policy.PolicyResolver) PolicyHandler {
	return &policyHandlerImpl{
		policyResolver: policyResolver,
	}
}

type shiftRulePayload struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	BreakMinutes int    `json:"break_minutes"`
	BreakPaid    bool   `json:"break_paid"`
	GraceMinutes int    `json:"grace_minutes"`
}

type policyPayload struct {
	ShiftType string                      `json:"shift_type"`
	Shifts    map[string]shiftRulePayload `json:"shifts"`
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

func payloadFromPolicy(p policy.AttendancePolicy) policyPayload {
	var out policyPayload
	out.ShiftType = string(p.ShiftType)
	out.Shifts = make(map[string]shiftRulePayload, len(p.Shifts))
	for key, rule := range p.Shifts {
		out.Shifts[key] = shiftRulePayload(rule)
	}
	out.Flexible.RequiredHours = p.Flexible.RequiredHours
	out.Flexible.GraceMinutes = p.Flexible.GraceMinutes
	out.Overtime.Enabled = p.Overtime.Enabled
	out.Overtime.StartAfterMinutes = p.Overtime.StartAfterMinutes
	out.Overtime.RateMultiplier = p.Overtime.RateMultiplier
	out.Late.Enabled = p.Late.Enabled
	out.Late.LateToHalfDayCount = p.Late.LateToHalfDayCount
	out.EarlyOut.Enabled = p.EarlyOut.Enabled
	out.EarlyOut.DeductByMinutes = p.EarlyOut.DeductByMinutes
	out.MinHalfDayHours = p.MinHalfDayHours
	out.MinFullDayHours = p.MinFullDayHours
	out.AbsentCutoff = p.AbsentCutoff
	out.ConsecutiveAbsenceDays = p.ConsecutiveAbsenceDays
	return out
}

func (pl policyPayload) toPolicy(companyID string) policy.AttendancePolicy {
	p := policy.AttendancePolicy{
		CompanyID:              companyID,
		ShiftType:              policy.ShiftType(pl.ShiftType),
		MinHalfDayHours:        pl.MinHalfDayHours,
		MinFullDayHours:        pl.MinFullDayHours,
		AbsentCutoff:           pl.AbsentCutoff,
		ConsecutiveAbsenceDays: pl.ConsecutiveAbsenceDays,
	}
	p.Shifts = make(map[string]policy.ShiftRule, len(pl.Shifts))
	for key, rule := range pl.Shifts {
		p.Shifts[key] = policy.ShiftRule(rule)
	}
	p.Flexible = policy.FlexibleRule{RequiredHours: pl.Flexible.RequiredHours, GraceMinutes: pl.Flexible.GraceMinutes}
	p.Overtime = policy.OvertimeRule{Enabled: pl.Overtime.Enabled, StartAfterMinutes: pl.Overtime.StartAfterMinutes, RateMultiplier: pl.Overtime.RateMultiplier}
	p.Late = policy.LateRule{Enabled: pl.Late.Enabled, LateToHalfDayCount: pl.Late.LateToHalfDayCount}
	p.EarlyOut = policy.EarlyOutRule{Enabled: pl.EarlyOut.Enabled, DeductByMinutes: pl.EarlyOut.DeductByMinutes}
	return p
}

// Get implements PolicyHandler. Companies without a persisted policy see the
// built-in default.
func (h *policyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	p, err := h.policyResolver.Resolve(r.Context(), identity.CompanyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payloadFromPolicy(p))
}

// Upsert implements PolicyHandler.
func (h *policyHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromRequest(r)
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var pl policyPayload
	if err := json.NewDecoder(r.Body).Decode(&pl); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	saved, err := h.policyResolver.Upsert(r.Context(), pl.toPolicy(identity.CompanyID))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payloadFromPolicy(saved))
}
