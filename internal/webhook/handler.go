package webhook

import (
	"net/http"
	"strings"

	"salescrm_backend/platform/config"
	"salescrm_backend/platform/httpkit"
	"salescrm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

const msgLeadExists = "Lead already exists"

// Handler exposes the inbound webhook endpoints.
type Handler struct {
	service *Service
	cfg     config.WebhookConfig
	log     *logger.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(service *Service, cfg config.WebhookConfig, log *logger.Logger) *Handler {
	return &Handler{service: service, cfg: cfg, log: log}
}

// contactCORS sets the permissive CORS headers the public form needs. The
// form is served from marketing sites outside our origin allowlist, so the
// endpoint answers for any origin.
func contactCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}

// HandleContactOptions answers the browser preflight for the contact form.
func (h *Handler) HandleContactOptions(c *gin.Context) {
	contactCORS(c)
	c.Status(http.StatusNoContent)
}

// HandleContactForm accepts a public contact form submission.
func (h *Handler) HandleContactForm(c *gin.Context) {
	contactCORS(c)

	var sub ContactSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(sub.FullName) == "" || strings.TrimSpace(sub.Email) == "" {
		httpkit.Error(c, http.StatusBadRequest, "fullName and email are required", nil)
		return
	}

	result, err := h.service.ProcessContactForm(c.Request.Context(), sub)
	if err != nil {
		h.logWebhook(ChannelContactForm, false, err.Error())
		if httpkit.HandleError(c, err) {
			return
		}
	}

	h.logWebhook(ChannelContactForm, true, "")
	if !result.Created {
		httpkit.OK(c, gin.H{"success": true, "message": msgLeadExists, "leadId": result.Lead.ID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"leadId":    result.Lead.ID,
		"hierarchy": result.Hierarchy,
	})
}

// HandleMetaVerify answers the subscription handshake Meta performs when the
// webhook is registered. Meta sends hub.mode, hub.verify_token and
// hub.challenge; the challenge must be echoed verbatim on success.
func (h *Handler) HandleMetaVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.GetMetaVerifyToken() {
		h.logWebhook(ChannelMeta, true, "subscription verified")
		c.String(http.StatusOK, challenge)
		return
	}

	h.logWebhook(ChannelMeta, false, "verification token mismatch")
	c.Status(http.StatusForbidden)
}

// HandleMetaEvents accepts a signed Meta webhook delivery. The delivery is
// always acknowledged with EVENT_RECEIVED once the payload parses; per-event
// failures are logged inside the service rather than surfaced, since a non-200
// would make Meta redeliver the whole batch.
func (h *Handler) HandleMetaEvents(c *gin.Context) {
	var payload MetaPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload", nil)
		return
	}

	h.service.ProcessMetaEvents(c.Request.Context(), payload)
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// HandlePartnerLead accepts a lead from a partner integration.
func (h *Handler) HandlePartnerLead(c *gin.Context) {
	var lead PartnerLead
	if err := c.ShouldBindJSON(&lead); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	result, err := h.service.ProcessPartnerLead(c.Request.Context(), lead)
	if err != nil {
		h.logWebhook(ChannelPartner, false, err.Error())
		if httpkit.HandleError(c, err) {
			return
		}
	}

	h.logWebhook(ChannelPartner, true, "")
	if !result.Created {
		httpkit.OK(c, gin.H{"success": true, "message": msgLeadExists, "leadId": result.Lead.ID})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "leadId": result.Lead.ID})
}

func (h *Handler) logWebhook(channel string, accepted bool, reason string) {
	if h.log != nil {
		h.log.WebhookEvent(channel, accepted, reason)
	}
}
