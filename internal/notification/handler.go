package notification

import (
	"net/http"

	"salescrm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the in-app notification endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a notification handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// HandleList returns the caller's notifications, newest first. Pass
// ?unread=true to restrict to unread ones; the unread count is always
// included.
func (h *Handler) HandleList(c *gin.Context) {
	identity := httpkit.GetIdentity(c)

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.repo.List(c.Request.Context(), identity.UserID(), unreadOnly, 50)
	if httpkit.HandleError(c, err) {
		return
	}

	unread, err := h.repo.CountUnread(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"notifications": notifications, "unreadCount": unread})
}

// HandleMarkRead marks one of the caller's notifications as read.
func (h *Handler) HandleMarkRead(c *gin.Context) {
	identity := httpkit.GetIdentity(c)

	notificationID, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid notification ID", nil)
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), identity.UserID(), notificationID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

// HandleMarkAllRead marks all of the caller's notifications as read.
func (h *Handler) HandleMarkAllRead(c *gin.Context) {
	identity := httpkit.GetIdentity(c)

	updated, err := h.repo.MarkAllRead(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true, "updated": updated})
}
