// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salescrm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is persisted for the first time.
// Duplicate submissions do not publish this event.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Channel   string    `json:"channel"`
	Source    string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// MeetingScheduled is published when a meeting is booked for a lead via the
// dedicated scheduling action.
type MeetingScheduled struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	MeetingID   uuid.UUID `json:"meetingId"`
	Title       string    `json:"title"`
	MeetingDate time.Time `json:"meetingDate"`
}

func (e MeetingScheduled) EventName() string { return "leads.meeting.scheduled" }

// MeetingReminderDue is published when a scheduled meeting enters its
// reminder window, either by the cron scan or the background worker.
type MeetingReminderDue struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	MeetingID uuid.UUID `json:"meetingId"`
}

func (e MeetingReminderDue) EventName() string { return "leads.meeting.reminder_due" }
