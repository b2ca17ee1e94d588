package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	pkgerrors "github.com/makkenno/ittasu/pkg/errors"
	"github.com/makkenno/ittasu/pkg/utils"
)

// base carries what every handler needs to answer a request
type base struct {
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

func (b base) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (b base) respondError(w http.ResponseWriter, r *http.Request, err error) {
	b.errors.Handle(w, r, err)
}

// decode reads a JSON body into dst and validates it
func (b base) decode(r *http.Request, dst interface{}) error {
	return b.decodeBody(r, dst, false)
}

// decodeOptional is decode for endpoints where an empty body is allowed
func (b base) decodeOptional(r *http.Request, dst interface{}) error {
	return b.decodeBody(r, dst, true)
}

func (b base) decodeBody(r *http.Request, dst interface{}, optional bool) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return utils.ValidateStruct(dst)
			}
			return pkgerrors.NewValidationError("request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return pkgerrors.NewValidationError("invalid request body: " + err.Error())
	}
	return utils.ValidateStruct(dst)
}

func workspaceID(r *http.Request) string {
	return chi.URLParam(r, "workspaceID")
}

// optionalQuery returns nil when the parameter is absent or empty
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
