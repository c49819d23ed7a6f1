package attendance

import "errors"

var (
	// Check-in errors
	ErrOutsideCheckInWindow = errors.New("outside check-in window")
	ErrAlreadyCheckedIn     = errors.New("you have already checked in today")
	ErrAttendanceCompleted  = errors.New("attendance already completed for today")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrDuplicateRecord    = errors.New("attendance record already exists for this date")
)
