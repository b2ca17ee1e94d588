package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	"github.com/makkenno/ittasu/domain/core/aggregates"
	"github.com/makkenno/ittasu/domain/core/entities"
	"github.com/makkenno/ittasu/domain/core/valueobjects"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	base
	service *services.WorkspaceService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *services.WorkspaceService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// PositionRequest is a canvas coordinate
type PositionRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p *PositionRequest) toDomain() *valueobjects.Position {
	if p == nil {
		return nil
	}
	pos := valueobjects.Position{X: *p.X, Y: *p.Y}
	return &pos
}

// CreateTaskRequest represents the request body for adding a task to the current scope
type CreateTaskRequest struct {
	Title     string           `json:"title"`
	Position  *PositionRequest `json:"position"`
	AutoPlace bool             `json:"autoPlace"`
}

// UpdateTitleRequest represents the request body for renaming a task
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// UpdateMemoRequest represents the request body for replacing a memo
type UpdateMemoRequest struct {
	Memo string `json:"memo"`
}

// ListTasks handles GET /tasks?scope=; an absent scope lists root tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.ScopeTasks(r.Context(), workspaceID(r), optionalQuery(r, "scope"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []entities.TaskNode{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	task, err := h.service.AddChildTask(r.Context(), workspaceID(r), aggregates.ChildTaskSpec{
		Title:     req.Title,
		Position:  req.Position.toDomain(),
		AutoPlace: req.AutoPlace,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, task)
}

// UpdateTitle handles PUT /tasks/{taskID}/title
func (h *TaskHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req UpdateTitleRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.UpdateTaskTitle(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"), req.Title); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateMemo handles PUT /tasks/{taskID}/memo
func (h *TaskHandler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemoRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.UpdateTaskMemo(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"), req.Memo); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePosition handles PUT /tasks/{taskID}/position
func (h *TaskHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.UpdateTaskPosition(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"), *req.toDomain()); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleComplete handles POST /tasks/{taskID}/toggle
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.ToggleTaskComplete(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{taskID}; descendants are removed too
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.RemoveTask(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}
