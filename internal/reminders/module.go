package reminders

import (
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"
)

// Module is the meeting reminder module implementing http.Module.
type Module struct {
	scan    *ScanService
	handler *Handler
	secret  string
}

// NewModule creates the reminders module and subscribes it to the event bus.
func NewModule(meetings MeetingSource, notifier Notifier, bus events.Bus, cfg config.CronConfig, log *logger.Logger) *Module {
	scan := NewScanService(meetings, notifier, cfg.GetReminderWindow(), log)
	RegisterSubscribers(bus, scan)

	return &Module{scan: scan, handler: NewHandler(scan), secret: cfg.GetCronSecret()}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reminders"
}

// Scan exposes the scan service.
func (m *Module) Scan() *ScanService {
	return m.scan
}

// RegisterRoutes mounts the cron endpoint. It sits outside the JWT-protected
// groups; the shared cron secret is its only guard.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/cron/meetings", CronSecretGuard(m.secret), m.handler.HandleScan)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
