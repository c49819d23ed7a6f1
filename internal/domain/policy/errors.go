package policy

import "errors"

var (
	ErrPolicyNotFound = errors.New("attendance policy not found")
	ErrUnknownShift   = errors.New("shift is not configured in the attendance policy")
)
