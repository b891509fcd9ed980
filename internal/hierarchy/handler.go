package hierarchy

import (
	"net/http"

	"salescrm_backend/platform/httpkit"
	"salescrm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the admin hierarchy management API.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a hierarchy handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// CreateNodeRequest is the body for manually adding a hierarchy node.
type CreateNodeRequest struct {
	Level      string  `json:"level" validate:"required,oneof=Project Domain Subdomain Campaign Source"`
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	ParentID   *string `json:"parentId" validate:"omitempty,uuid"`
	SourceType *string `json:"sourceType" validate:"omitempty,oneof=Website Meta Manual Other"`
}

// HandleListNodes lists nodes at a level under an optional parent.
// GET /api/v1/admin/hierarchy?level=Domain&parentId=...
func (h *Handler) HandleListNodes(c *gin.Context) {
	level := c.Query("level")
	if level == "" {
		level = LevelProject
	}
	if !validLevel(level) {
		httpkit.Error(c, http.StatusBadRequest, "invalid level", nil)
		return
	}

	var parentID *uuid.UUID
	if raw := c.Query("parentId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid parentId", nil)
			return
		}
		parentID = &parsed
	}

	nodes, err := h.repo.ListChildren(c.Request.Context(), level, parentID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"nodes": nodes})
}

// HandleCreateNode manually creates a node (find-or-create semantics, same
// as the ingestion path).
// POST /api/v1/admin/hierarchy
func (h *Handler) HandleCreateNode(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid parentId", nil)
			return
		}
		parentID = &parsed
	}
	if req.Level != LevelProject && parentID == nil {
		httpkit.Error(c, http.StatusBadRequest, "parentId is required below Project level", nil)
		return
	}

	node, err := h.repo.UpsertNode(c.Request.Context(), req.Level, req.Name, parentID, req.SourceType)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, node)
}

// HandleDeactivateNode marks a node inactive without removing history.
// PATCH /api/v1/admin/hierarchy/:nodeId/deactivate
func (h *Handler) HandleDeactivateNode(c *gin.Context) {
	id, ok := parseNodeID(c)
	if !ok {
		return
	}

	node, err := h.repo.UpdateStatus(c.Request.Context(), id, "Inactive")
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, node)
}

// HandleDeleteNode deletes a node and its entire subtree.
// DELETE /api/v1/admin/hierarchy/:nodeId
func (h *Handler) HandleDeleteNode(c *gin.Context) {
	id, ok := parseNodeID(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteNode(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"success": true})
}

func parseNodeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid node ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func validLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}
