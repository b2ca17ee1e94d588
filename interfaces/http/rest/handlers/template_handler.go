package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// TemplateHandler handles template listing, capture and instantiation
type TemplateHandler struct {
	base
	service *services.WorkspaceService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(service *services.WorkspaceService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// SaveTemplateRequest represents the request body for capturing tasks as a template
type SaveTemplateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	TaskIDs     []string `json:"taskIds" validate:"required,min=1"`
}

// InstantiateTemplateRequest positions a template; a missing anchor keeps template coordinates
type InstantiateTemplateRequest struct {
	Anchor *PositionRequest `json:"anchor"`
}

// ListTemplates handles GET /templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.ListTemplates(r.Context(), workspaceID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

// SaveTemplate handles POST /templates
func (h *TemplateHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	template, err := h.service.SaveTemplate(r.Context(), workspaceID(r), req.Name, req.Description, req.TaskIDs)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, template)
}

// InstantiateTemplate handles POST /templates/{templateID}/instantiate.
// An empty body is accepted.
func (h *TemplateHandler) InstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	var req InstantiateTemplateRequest
	if err := h.decodeOptional(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.service.InstantiateTemplate(r.Context(), workspaceID(r), chi.URLParam(r, "templateID"), req.Anchor.toDomain())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"nodes": result.Nodes,
		"edges": result.Edges,
	})
}
