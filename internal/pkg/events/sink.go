// Package events defines the fire-and-forget event hook the engine uses to
// notify observers of attendance and payroll state changes. The engine never
// awaits delivery and never treats emission failure as an error.
package events

// Attendance and payroll event names.
const (
	EventCheckIn            = "attendance:check-in"
	EventCheckOut           = "attendance:check-out"
	EventConsecutiveAbsence = "attendance:consecutive-absence"
	EventPayrollPaid        = "payroll:paid"

	// EventNotification is the self-notification channel accompanying every
	// successful attendance transition.
	EventNotification = "notification"
)

// Sink receives engine events. Implementations must not block.
type Sink interface {
	Emit(event string, userID string, payload any)
}

// NopSink discards every event. It is the default when no transport is wired,
// keeping the engine testable without a live broadcaster.
type NopSink struct{}

func (NopSink) Emit(event string, userID string, payload any) {}

// CaptureSink records emitted events in order. Test helper.
type CaptureSink struct {
	Events []CapturedEvent
}

type CapturedEvent struct {
	Event   string
	UserID  string
	Payload any
}

func (c *CaptureSink) Emit(event string, userID string, payload any) {
	c.Events = append(c.Events, CapturedEvent{Event: event, UserID: userID, Payload: payload})
}
