package reminders

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"salescrm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// CronSecretGuard authorizes cron callers via a shared Bearer secret. When no
// secret is configured the guard is a no-op (local development).
func CronSecretGuard(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Next()
	}
}

// Handler exposes the cron-facing scan endpoint.
type Handler struct {
	scan *ScanService
}

// NewHandler creates a reminders handler.
func NewHandler(scan *ScanService) *Handler {
	return &Handler{scan: scan}
}

// HandleScan runs one reminder scan and reports what it did.
func (h *Handler) HandleScan(c *gin.Context) {
	result, err := h.scan.Run(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"success":              true,
		"processedCount":       result.ProcessedCount,
		"notificationsCreated": result.NotificationsCreated,
	})
}
