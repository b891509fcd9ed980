// Package handler exposes the authenticated leads API.
package handler

import (
	"net/http"
	"strconv"

	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/leads/service"
	"salescrm_backend/internal/leads/transport"
	"salescrm_backend/internal/users"
	"salescrm_backend/platform/httpkit"
	"salescrm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Handler handles lead HTTP requests.
type Handler struct {
	service *service.Service
	users   *users.Repository
	val     *validator.Validator
}

// New creates a leads handler.
func New(svc *service.Service, userRepo *users.Repository, val *validator.Validator) *Handler {
	return &Handler{service: svc, users: userRepo, val: val}
}

// HandleList lists leads with optional source/status filters.
// GET /api/v1/leads?sourceId=...&status=...&limit=...&offset=...
func (h *Handler) HandleList(c *gin.Context) {
	filter := repository.ListFilter{Status: c.Query("status")}

	if raw := c.Query("sourceId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid sourceId", nil)
			return
		}
		filter.SourceID = &parsed
	}
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))
	filter.Offset, _ = strconv.Atoi(c.Query("offset"))

	leads, err := h.service.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"leads": leads})
}

// HandleGet returns a lead with its remark and meeting history.
// GET /api/v1/leads/:leadId
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, detail)
}

// HandleCreate creates a lead manually. Duplicates by email are rejected
// with 409 so the caller can navigate to the existing record.
// POST /api/v1/leads
func (h *Handler) HandleCreate(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	sourceType := req.SourceType
	if sourceType == "" {
		sourceType = transport.SourceTypeManual
	}

	result, err := h.service.Ingest(c.Request.Context(), transport.LeadIntake{
		Channel:    "manual",
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		SourceType: sourceType,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	if !result.Created {
		httpkit.Error(c, http.StatusConflict, "a lead with this email already exists", gin.H{"leadId": result.Lead.ID})
		return
	}

	if req.Value > 0 {
		updated, updateErr := h.service.Update(c.Request.Context(), result.Lead.ID, transport.UpdateLeadRequest{Value: &req.Value})
		if updateErr == nil {
			result.Lead = updated
		}
	}

	c.JSON(http.StatusCreated, result.Lead)
}

// HandleUpdate applies a general edit.
// PATCH /api/v1/leads/:leadId
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	lead, err := h.service.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

// HandleSetStatus overwrites the lead status.
// PATCH /api/v1/leads/:leadId/status
func (h *Handler) HandleSetStatus(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	var req transport.SetStatusRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	lead, err := h.service.SetStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

// HandleDelete removes a lead and its history. Admin only.
// DELETE /api/v1/admin/leads/:leadId
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true})
}

// HandleAddRemark appends a remark to the lead's history.
// POST /api/v1/leads/:leadId/remarks
func (h *Handler) HandleAddRemark(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AddRemarkRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	addedBy, addedByName := h.actor(c)
	remark, err := h.service.AppendRemark(c.Request.Context(), id, req, addedBy, addedByName)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, remark)
}

// HandleSchedule books a meeting through the dedicated scheduling action
// (lead moves to Contacted, reminder gets enqueued).
// POST /api/v1/leads/:leadId/schedule
func (h *Handler) HandleSchedule(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	var req transport.ScheduleMeetingRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	schedulerID, _ := h.actor(c)
	meeting, err := h.service.ScheduleMeeting(c.Request.Context(), id, req, schedulerID)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, meeting)
}

// HandleAddMeeting records a meeting via the general edit path.
// POST /api/v1/leads/:leadId/meetings
func (h *Handler) HandleAddMeeting(c *gin.Context) {
	id, ok := h.parseLeadID(c)
	if !ok {
		return
	}

	var req transport.AddMeetingRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	meeting, err := h.service.AddMeeting(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, meeting)
}

// HandleUpdateMeetingStatus moves one meeting through its lifecycle.
// PATCH /api/v1/leads/:leadId/meetings/:meetingId/status
func (h *Handler) HandleUpdateMeetingStatus(c *gin.Context) {
	leadID, ok := h.parseLeadID(c)
	if !ok {
		return
	}
	meetingID, err := uuid.Parse(c.Param("meetingId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid meeting ID", nil)
		return
	}

	var req transport.UpdateMeetingStatusRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	meeting, svcErr := h.service.UpdateMeetingStatus(c.Request.Context(), leadID, meetingID, req)
	if httpkit.HandleError(c, svcErr) {
		return
	}

	httpkit.OK(c, meeting)
}

func (h *Handler) parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}

// actor resolves the authenticated user for attribution fields.
func (h *Handler) actor(c *gin.Context) (*uuid.UUID, string) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		return nil, ""
	}

	id := identity.UserID()
	name := ""
	if h.users != nil {
		if user, err := h.users.GetByID(c.Request.Context(), id); err == nil {
			name = user.Name
		}
	}
	return &id, name
}
