package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	domainservices "github.com/makkenno/ittasu/domain/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// WorkspaceHandler serves workspace state, navigation and projections
type WorkspaceHandler struct {
	base
	service *services.WorkspaceService
}

// NewWorkspaceHandler creates a new workspace handler
func NewWorkspaceHandler(service *services.WorkspaceService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// TaskPointerRequest names a task, or the root when taskId is null
type TaskPointerRequest struct {
	TaskID *string `json:"taskId"`
}

// NextTaskResponse carries the resolved next task, null when none is left
type NextTaskResponse struct {
	TaskID *string `json:"taskId"`
}

// GetWorkspace handles GET /workspaces/{workspaceID}
func (h *WorkspaceHandler) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), workspaceID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// DeleteWorkspace handles DELETE /workspaces/{workspaceID}
func (h *WorkspaceHandler) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), workspaceID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCurrentTask handles PUT /workspaces/{workspaceID}/current
func (h *WorkspaceHandler) SetCurrentTask(w http.ResponseWriter, r *http.Request) {
	var req TaskPointerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.SetCurrentTask(r.Context(), workspaceID(r), req.TaskID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetWorkspace(w, r)
}

// GoToParent handles POST /workspaces/{workspaceID}/current/parent
func (h *WorkspaceHandler) GoToParent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.GoToParent(r.Context(), workspaceID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetWorkspace(w, r)
}

// GoToNextTask handles POST /workspaces/{workspaceID}/current/next
func (h *WorkspaceHandler) GoToNextTask(w http.ResponseWriter, r *http.Request) {
	next, ok, err := h.service.GoToNextTask(r.Context(), workspaceID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := NextTaskResponse{}
	if ok {
		resp.TaskID = &next
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// SelectTask handles PUT /workspaces/{workspaceID}/selection
func (h *WorkspaceHandler) SelectTask(w http.ResponseWriter, r *http.Request) {
	var req TaskPointerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.SelectTask(r.Context(), workspaceID(r), req.TaskID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NextTask handles GET /workspaces/{workspaceID}/next-task
func (h *WorkspaceHandler) NextTask(w http.ResponseWriter, r *http.Request) {
	next, ok, err := h.service.NextTask(r.Context(), workspaceID(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	resp := NextTaskResponse{}
	if ok {
		resp.TaskID = &next
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// Markdown handles GET /workspaces/{workspaceID}/markdown?taskId=
func (h *WorkspaceHandler) Markdown(w http.ResponseWriter, r *http.Request) {
	md, err := h.service.Markdown(r.Context(), workspaceID(r), optionalQuery(r, "taskId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(md)); err != nil {
		h.logger.Error("Failed to write markdown", zap.Error(err))
	}
}

// Outline handles GET /workspaces/{workspaceID}/outline?taskId=
func (h *WorkspaceHandler) Outline(w http.ResponseWriter, r *http.Request) {
	headings, err := h.service.Outline(r.Context(), workspaceID(r), optionalQuery(r, "taskId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if headings == nil {
		headings = []domainservices.MarkdownHeading{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"headings": headings})
}
