// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/hierarchy"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/leads/handler"
	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/leads/service"
	"salescrm_backend/internal/taxonomy"
	"salescrm_backend/internal/users"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo    *repository.Repository
	service *service.Service
	handler *handler.Handler
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, hier *hierarchy.Service, bus events.Bus, userRepo *users.Repository, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	classifier := taxonomy.New(taxonomy.DefaultRules(), taxonomy.DefaultFallback())
	svc := service.New(repo, hier, classifier, bus, log)
	h := handler.New(svc, userRepo, val)

	return &Module{repo: repo, service: svc, handler: h}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the lead service to the webhook and reminder modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the lead repository for reminder scans.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	leadsGroup.GET("", m.handler.HandleList)
	leadsGroup.POST("", m.handler.HandleCreate)
	leadsGroup.GET("/:leadId", m.handler.HandleGet)
	leadsGroup.PATCH("/:leadId", m.handler.HandleUpdate)
	leadsGroup.PATCH("/:leadId/status", m.handler.HandleSetStatus)
	leadsGroup.POST("/:leadId/remarks", m.handler.HandleAddRemark)
	leadsGroup.POST("/:leadId/schedule", m.handler.HandleSchedule)
	leadsGroup.POST("/:leadId/meetings", m.handler.HandleAddMeeting)
	leadsGroup.PATCH("/:leadId/meetings/:meetingId/status", m.handler.HandleUpdateMeetingStatus)

	ctx.Admin.DELETE("/leads/:leadId", m.handler.HandleDelete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
