package scheduler

import (
	"context"
	"time"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"
)

// RegisterSubscribers wires meeting scheduling to the task queue: when a
// meeting is scheduled, a reminder task is enqueued to fire `window` before
// the meeting starts. Meetings starting sooner than that get the reminder
// immediately.
func RegisterSubscribers(bus events.Bus, client ReminderScheduler, window time.Duration, log *logger.Logger) {
	bus.Subscribe(events.MeetingScheduled{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.MeetingScheduled)
		if !ok {
			return nil
		}

		runAt := ev.MeetingDate.Add(-window)
		if now := time.Now(); runAt.Before(now) {
			runAt = now
		}

		err := client.ScheduleMeetingReminder(ctx, MeetingReminderPayload{
			LeadID:    ev.LeadID.String(),
			MeetingID: ev.MeetingID.String(),
		}, runAt)
		if err != nil {
			if log != nil {
				log.Error("enqueue meeting reminder failed", "meetingId", ev.MeetingID.String(), "error", err.Error())
			}
			return err
		}
		return nil
	}))
}
