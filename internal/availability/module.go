package availability

import (
	apphttp "salescrm_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the availability bounded context module implementing http.Module.
type Module struct {
	repo    *Repository
	handler *Handler
}

// NewModule creates and initializes the availability module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := NewRepository(pool)
	return &Module{repo: repo, handler: NewHandler(repo)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "availability"
}

// RegisterRoutes mounts availability routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/availability")
	group.GET("/:leaderId", m.handler.HandleGetWeek)
	group.PUT("/:leaderId", m.handler.HandleSetWeek)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
