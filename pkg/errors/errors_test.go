package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppError_Constructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
		wantMsg    string
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest, "bad input"},
		{"not found", NewNotFoundError("task"), ErrorTypeNotFound, http.StatusNotFound, "task not found"},
		{"conflict", NewConflictError("stale"), ErrorTypeConflict, http.StatusConflict, "stale"},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, http.StatusInternalServerError, "oops"},
		{"database", NewDatabaseError("PutItem", cause), ErrorTypeDatabase, http.StatusInternalServerError, "database operation 'PutItem' failed"},
		{"external", NewExternalError("eventbridge", cause), ErrorTypeExternal, http.StatusBadGateway, "external service 'eventbridge' error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.NotEmpty(t, tt.err.StackTrace)
		})
	}
}

func TestAppError_CauseChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseError("GetItem", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "DATABASE: database operation 'GetItem' failed (caused by: connection reset)", err.Error())

	wrapped := fmt.Errorf("load: %w", err)
	assert.Same(t, err, GetAppError(wrapped))
	assert.True(t, IsType(wrapped, ErrorTypeDatabase))
	assert.False(t, IsNotFound(wrapped))
	assert.Nil(t, GetAppError(cause))
}

func TestNewFieldValidationError(t *testing.T) {
	err := NewFieldValidationError("nodes[0].title", "required", "nodes[0].title is required")

	assert.True(t, IsValidation(err))
	assert.Equal(t, "nodes[0].title", err.Details["field"])
	assert.Equal(t, "required", err.Details["rule"])
	assert.Equal(t, CodeInvalidField, err.Code)
}

func TestNewVersionConflictError(t *testing.T) {
	err := NewVersionConflictError("workspace w1", 4).WithDetail("current", 5)

	assert.True(t, IsConflict(err))
	assert.Equal(t, http.StatusConflict, err.HTTPStatus())
	assert.Equal(t, CodeVersionConflict, err.Code)
	assert.Equal(t, "workspace w1 was modified concurrently (expected version 4)", err.Message)
	assert.Equal(t, map[string]interface{}{"expected": 4, "current": 5}, err.Details)
}

func TestAppError_UnknownTypeIsServerError(t *testing.T) {
	err := &AppError{Type: "TEAPOT", Message: "short and stout"}

	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	appErr := NewConflictError("version mismatch")
	wrapped := Wrap(appErr, "save workspace")
	assert.True(t, IsConflict(wrapped))
	assert.Equal(t, "save workspace: version mismatch", GetAppError(wrapped).Message)

	plain := Wrap(errors.New("disk full"), "write snapshot")
	require.True(t, IsType(plain, ErrorTypeInternal))
	assert.Equal(t, "write snapshot", GetAppError(plain).Message)
}

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		debug      bool
		wantStatus int
		wantType   string
		wantMsg    string
		wantLevel  zapcore.Level
	}{
		{
			name:       "app error",
			err:        NewFieldValidationError("title", "required", "title is required"),
			wantStatus: http.StatusBadRequest,
			wantType:   "VALIDATION",
			wantMsg:    "title is required",
			wantLevel:  zapcore.WarnLevel,
		},
		{
			name:       "server side app error",
			err:        NewDatabaseError("PutItem", errors.New("throttled")),
			wantStatus: http.StatusInternalServerError,
			wantType:   "DATABASE",
			wantMsg:    "database operation 'PutItem' failed",
			wantLevel:  zapcore.ErrorLevel,
		},
		{
			name:       "plain error hides message",
			err:        errors.New("secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "INTERNAL",
			wantMsg:    "An internal error occurred",
			wantLevel:  zapcore.ErrorLevel,
		},
		{
			name:       "plain error in debug mode",
			err:        errors.New("secret detail"),
			debug:      true,
			wantStatus: http.StatusInternalServerError,
			wantType:   "INTERNAL",
			wantMsg:    "secret detail",
			wantLevel:  zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := NewErrorHandler(zap.New(core), tt.debug)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/w1", nil)
			req.Header.Set("X-Request-ID", "req-1")
			rec := httptest.NewRecorder()

			handler.Handle(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, "req-1", body.RequestID)

			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.wantLevel, logs.All()[0].Level)
		})
	}
}

func TestErrorHandler_DebugAddsStackTrace(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), true)
	appErr := NewFieldValidationError("title", "required", "title is required")
	rec := httptest.NewRecorder()

	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), appErr)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "title", body.Details["field"])
	assert.NotEmpty(t, body.Details["stack_trace"])
	assert.NotContains(t, appErr.Details, "stack_trace")
}

func TestErrorHandler_MiddlewareRecoversPanics(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)
	panicking := handler.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil map")
	}))
	rec := httptest.NewRecorder()

	panicking.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "panic: nil map", body.Message)
}
