package availability

import (
	"fmt"
	"net/http"
	"regexp"

	"salescrm_backend/internal/users"
	"salescrm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateSlots checks day and time bounds on a submitted week.
func ValidateSlots(slots []SlotInput) error {
	if len(slots) == 0 {
		return fmt.Errorf("at least one slot is required")
	}
	seen := map[int]bool{}
	for _, slot := range slots {
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			return fmt.Errorf("dayOfWeek %d out of range 0-6", slot.DayOfWeek)
		}
		if seen[slot.DayOfWeek] {
			return fmt.Errorf("duplicate dayOfWeek %d", slot.DayOfWeek)
		}
		seen[slot.DayOfWeek] = true
		if !timeOfDayRe.MatchString(slot.StartTime) || !timeOfDayRe.MatchString(slot.EndTime) {
			return fmt.Errorf("times must be HH:MM in 24h format")
		}
		if slot.StartTime >= slot.EndTime {
			return fmt.Errorf("startTime must be before endTime on day %d", slot.DayOfWeek)
		}
	}
	return nil
}

// Handler exposes the availability endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an availability handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// HandleGetWeek returns a leader's weekly availability. Any authenticated
// user may read it; the schedule drives meeting planning across the team.
func (h *Handler) HandleGetWeek(c *gin.Context) {
	leaderID, err := uuid.Parse(c.Param("leaderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid leader ID", nil)
		return
	}

	slots, err := h.repo.GetWeek(c.Request.Context(), leaderID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"availability": slots})
}

type setWeekRequest struct {
	Slots []SlotInput `json:"slots"`
}

// HandleSetWeek replaces the named days of a leader's weekly availability.
// Only the leader themselves or an Admin may write it.
func (h *Handler) HandleSetWeek(c *gin.Context) {
	leaderID, err := uuid.Parse(c.Param("leaderId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid leader ID", nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	if identity.UserID() != leaderID && !identity.HasRole(users.RoleAdmin) {
		httpkit.Error(c, http.StatusForbidden, "cannot modify another leader's availability", nil)
		return
	}

	var req setWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := ValidateSlots(req.Slots); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	slots, err := h.repo.SetWeek(c.Request.Context(), leaderID, req.Slots)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"availability": slots})
}
