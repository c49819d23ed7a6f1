package shiftmath

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		clock   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"18:30", 1110, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.clock)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error, got %d", tt.clock, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) unexpected error: %v", tt.clock, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.clock, got, tt.want)
		}
	}
}

func TestResolveWindow(t *testing.T) {
	day, err := ResolveWindow("09:00", "18:00")
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if day.CrossesMidnight {
		t.Error("day shift should not cross midnight")
	}
	if day.StartMinutes != 540 || day.EndMinutes != 1080 {
		t.Errorf("day window = %+v", day)
	}

	night, err := ResolveWindow("21:00", "06:00")
	if err != nil {
		t.Fatalf("ResolveWindow: %v", err)
	}
	if !night.CrossesMidnight {
		t.Error("night shift should cross midnight")
	}
	if night.StartMinutes != 1260 || night.EndMinutes != 1800 {
		t.Errorf("night window = %+v", night)
	}
}

func TestWindowAdjust(t *testing.T) {
	night := Window{StartMinutes: 1260, EndMinutes: 1800, CrossesMidnight: true}

	// 05:30 belongs to the next calendar day of the shift.
	if got := night.Adjust(330); got != 1770 {
		t.Errorf("Adjust(330) = %d, want 1770", got)
	}
	// 22:00 is already on the shift's own day.
	if got := night.Adjust(1320); got != 1320 {
		t.Errorf("Adjust(1320) = %d, want 1320", got)
	}

	day := Window{StartMinutes: 540, EndMinutes: 1080}
	if got := day.Adjust(330); got != 330 {
		t.Errorf("Adjust(330) on day shift = %d, want 330", got)
	}
}

func TestMinuteOfDay(t *testing.T) {
	ts := time.Date(2026, time.March, 10, 18, 20, 45, 0, time.UTC)
	if got := MinuteOfDay(ts); got != 1100 {
		t.Errorf("MinuteOfDay = %d, want 1100", got)
	}
}
