package policy

import (
	"time"
)

// ShiftType determines how attendance is judged for an employee.
type ShiftType string

const (
	// ShiftTypeFixed enforces a check-in window and clock-bound lateness/overtime.
	ShiftTypeFixed ShiftType = "fixed"
	// ShiftTypeFlexible only enforces a total-hours target.
	ShiftTypeFlexible ShiftType = "flexible"
)

// Well-known shift keys.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
	ShiftNight   = "night"
)

// ShiftRule is the clock window for one named shift.
// Start and End are "HH:MM" wall-clock strings; End before Start means the
// shift crosses midnight.
type ShiftRule struct {
	Start        string
	End          string
	BreakMinutes int
	BreakPaid    bool
	GraceMinutes int
}

// FlexibleRule is the hours target for flexible-shift companies.
type FlexibleRule struct {
	RequiredHours int
	GraceMinutes  int
}

type OvertimeRule struct {
	Enabled           bool
	StartAfterMinutes int
	RateMultiplier    float64
}

type LateRule struct {
	Enabled bool
	// LateToHalfDayCount is how many late-ins within the trailing 30 days
	// downgrade a full day to a half day.
	LateToHalfDayCount int
}

type EarlyOutRule struct {
	Enabled         bool
	DeductByMinutes bool
}

// AttendancePolicy is the effective time-and-attendance configuration for a
// company. A company without a persisted policy uses Default().
type AttendancePolicy struct {
	ID        string
	CompanyID string

	ShiftType ShiftType
	Shifts    map[string]ShiftRule
	Flexible  FlexibleRule

	Overtime OvertimeRule
	Late     LateRule
	EarlyOut EarlyOutRule

	MinHalfDayHours float64
	MinFullDayHours float64

	// AbsentCutoff is the "HH:MM" time of day after which employees without
	// any attendance row are auto-marked absent.
	AbsentCutoff string

	// ConsecutiveAbsenceDays is the streak length that raises an alert.
	ConsecutiveAbsenceDays int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ShiftRuleFor returns the rule for a shift key, reporting whether it exists.
func (p AttendancePolicy) ShiftRuleFor(key string) (ShiftRule, bool) {
	rule, ok := p.Shifts[key]
	return rule, ok
}
