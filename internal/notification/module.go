package notification

import (
	"salescrm_backend/internal/email"
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/users"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the notification bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	service *Service
	handler *Handler
}

// NewModule creates the notification module and subscribes it to the event
// bus.
func NewModule(pool *pgxpool.Pool, bus events.Bus, sender email.Sender, cfg config.NotificationConfig, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	userRepo := users.NewRepository(pool)
	service := NewService(repo, userRepo, sender, cfg.GetAppBaseURL(), log)
	handler := NewHandler(repo)

	RegisterSubscribers(bus, service, log)

	return &Module{repo: repo, service: service, handler: handler}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// Service exposes the fan-out service to the reminder scanner.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts notification routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	group.GET("", m.handler.HandleList)
	group.PATCH("/:notificationId/read", m.handler.HandleMarkRead)
	group.PATCH("/read-all", m.handler.HandleMarkAllRead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
