// Package hierarchy provides the marketing hierarchy bounded context module.
package hierarchy

import (
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the hierarchy bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	service *Service
	handler *Handler
}

// NewModule creates and initializes the hierarchy module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	service := NewService(repo)
	handler := NewHandler(repo, val)

	return &Module{repo: repo, service: service, handler: handler}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "hierarchy"
}

// Service exposes the path upsert service to other modules.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts hierarchy routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	admin := ctx.Admin.Group("/hierarchy")
	admin.GET("", m.handler.HandleListNodes)
	admin.POST("", m.handler.HandleCreateNode)
	admin.PATCH("/:nodeId/deactivate", m.handler.HandleDeactivateNode)
	admin.DELETE("/:nodeId", m.handler.HandleDeleteNode)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
