package webhook

import (
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"
)

// Module is the inbound webhook bounded context module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
	cfg     config.WebhookConfig
}

// NewModule creates and initializes the webhook module. The Graph client is
// only constructed when an access token is configured; without one, Meta
// leadgen events are acknowledged but skipped.
func NewModule(ingestor LeadIngestor, cfg config.WebhookConfig, log *logger.Logger) *Module {
	var fetcher LeadFetcher
	if cfg.GetMetaAccessToken() != "" {
		fetcher = NewGraphClient(cfg)
	}

	service := NewService(ingestor, fetcher, log)
	handler := NewHandler(service, cfg, log)

	return &Module{service: service, handler: handler, cfg: cfg}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the capture endpoints. All of them are public by
// design: the contact form is rate limited, the Meta endpoint is guarded by
// its HMAC signature, and the partner endpoint relies on the shared limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	throttle := ctx.WebhookRateLimiter.RateLimit()

	ctx.V1.OPTIONS("/webhook/contact", m.handler.HandleContactOptions)
	ctx.V1.POST("/webhook/contact", throttle, m.handler.HandleContactForm)

	ctx.V1.GET("/webhook/meta", m.handler.HandleMetaVerify)
	ctx.V1.POST("/webhook/meta", MetaSignatureMiddleware(m.cfg.GetMetaAppSecret()), m.handler.HandleMetaEvents)

	ctx.V1.POST("/webhooks/leads", throttle, m.handler.HandlePartnerLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
