package reminders

import (
	"context"

	"salescrm_backend/internal/events"
)

// RegisterSubscribers wires queued reminders back into the scan service.
func RegisterSubscribers(bus events.Bus, scan *ScanService) {
	bus.Subscribe(events.MeetingReminderDue{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.MeetingReminderDue)
		if !ok {
			return nil
		}
		return scan.RemindMeeting(ctx, ev.LeadID, ev.MeetingID)
	}))
}
