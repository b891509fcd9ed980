package notification

import (
	"context"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/logger"
)

// RegisterSubscribers wires the notification fan-out to the event bus.
func RegisterSubscribers(bus events.Bus, svc *Service, log *logger.Logger) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		ev, ok := e.(events.LeadCreated)
		if !ok {
			return nil
		}
		created, err := svc.NotifyLeadCreated(ctx, ev)
		if err != nil {
			return err
		}
		if log != nil {
			log.Info("lead created fan-out complete", "leadId", ev.LeadID.String(), "notifications", created)
		}
		return nil
	}))
}
