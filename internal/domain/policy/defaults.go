package policy

// Default returns the built-in attendance policy used when a company has not
// configured one. Callers receive a fresh copy; mutating it never affects
// other callers.
func Default() AttendancePolicy {
	return AttendancePolicy{
		ShiftType: ShiftTypeFixed,
		Shifts: map[string]ShiftRule{
			ShiftMorning: {Start: "09:00", End: "18:00", BreakMinutes: 60, BreakPaid: false, GraceMinutes: 10},
			ShiftEvening: {Start: "13:00", End: "22:00", BreakMinutes: 60, BreakPaid: false, GraceMinutes: 10},
			ShiftNight:   {Start: "21:00", End: "06:00", BreakMinutes: 60, BreakPaid: false, GraceMinutes: 10},
		},
		Flexible: FlexibleRule{
			RequiredHours: 9,
			GraceMinutes:  10,
		},
		Overtime: OvertimeRule{
			Enabled:           true,
			StartAfterMinutes: 30,
			RateMultiplier:    1.5,
		},
		Late: LateRule{
			Enabled:            true,
			LateToHalfDayCount: 3,
		},
		EarlyOut: EarlyOutRule{
			Enabled:         true,
			DeductByMinutes: true,
		},
		MinHalfDayHours:        4,
		MinFullDayHours:        8,
		AbsentCutoff:           "12:00",
		ConsecutiveAbsenceDays: 3,
	}
}
