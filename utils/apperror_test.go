package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation error", ValidationError("bad_input", "missing field"), http.StatusBadRequest},
		{"not found error", NotFoundError("submittal"), http.StatusNotFound},
		{"conflict error", ConflictError("number taken"), http.StatusConflict},
		{"internal error", InternalError(errors.New("db down")), http.StatusInternalServerError},
		{"plain error", errors.New("something"), http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("context: %w", NotFoundError("project")), http.StatusNotFound},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HTTPStatus(tt.err)
			if result != tt.expected {
				t.Errorf("HTTPStatus(%v) = %d, expected %d", tt.err, result, tt.expected)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("validation error exposes message and code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, ValidationError("invalid_status", "unknown status 'done'"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body["error"] != "unknown status 'done'" {
			t.Errorf("error = %q", body["error"])
		}
		if body["code"] != "invalid_status" {
			t.Errorf("code = %q", body["code"])
		}
	})

	t.Run("internal cause is never leaked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, InternalError(errors.New("pq: connection refused at 10.0.0.5")))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("response is not JSON: %v", err)
		}
		if body["error"] != "internal server error" {
			t.Errorf("internal detail leaked: %q", body["error"])
		}
		if body["code"] != "internal_error" {
			t.Errorf("code = %q", body["code"])
		}
	})

	t.Run("plain error treated as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("unexpected"))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("content type is JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, NotFoundError("contractor"))

		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError(cause)

	if !errors.Is(err, cause) {
		t.Error("InternalError must preserve the wrapped cause")
	}

	var appErr *AppError
	if !errors.As(error(err), &appErr) {
		t.Fatal("errors.As must find the AppError")
	}
	if appErr.Kind != KindInternal {
		t.Errorf("kind = %v", appErr.Kind)
	}
}
