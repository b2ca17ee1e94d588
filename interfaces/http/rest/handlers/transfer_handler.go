package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/makkenno/ittasu/application/services"
	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
)

// TransferHandler serves subgraph export and import
type TransferHandler struct {
	base
	service *services.WorkspaceService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(service *services.WorkspaceService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		base:    base{errors: errorHandler, logger: logger},
		service: service,
	}
}

// ExportSelectedRequest represents the request body for exporting chosen tasks
type ExportSelectedRequest struct {
	TaskIDs         []string `json:"taskIds" validate:"required,min=1,dive,required"`
	WithDescendants bool     `json:"withDescendants"`
}

// ExportSubgraph handles GET /tasks/{taskID}/export
func (h *TransferHandler) ExportSubgraph(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportSubgraph(r.Context(), workspaceID(r), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, data)
}

// ExportSelected handles POST /export
func (h *TransferHandler) ExportSelected(w http.ResponseWriter, r *http.Request) {
	var req ExportSelectedRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	data, err := h.service.ExportSelected(r.Context(), workspaceID(r), req.TaskIDs, req.WithDescendants)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, data)
}

// Import handles POST /import. The body is a transfer document as produced
// by the export endpoints.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, r, pkgerrors.NewValidationError("failed to read request body: "+err.Error()))
		return
	}

	imported, err := h.service.ImportSubgraph(r.Context(), workspaceID(r), body)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.logger.Info("Subgraph imported",
		zap.String("workspaceID", workspaceID(r)),
		zap.Int("nodes", len(imported.Nodes)),
		zap.Int("edges", len(imported.Edges)),
	)
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"nodes": imported.Nodes,
		"edges": imported.Edges,
		"idMap": imported.IDMap,
	})
}
