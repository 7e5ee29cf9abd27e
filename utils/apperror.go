package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Error kinds. Every error leaving a workflow service is one of these;
// anything unrecognized is treated as internal.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindInternal
)

// AppError carries an error kind plus a machine-readable code for the
// HTTP layer.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationError reports caller input that fails a precondition.
func ValidationError(code, format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing entity.
func NotFoundError(entity string) *AppError {
	return &AppError{Kind: KindNotFound, Code: "not_found", Message: entity + " not found"}
}

// ConflictError reports a uniqueness violation.
func ConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Code: "conflict", Message: fmt.Sprintf(format, args...)}
}

// InternalError wraps an unexpected failure. The cause is logged at the
// boundary, never leaked to the caller.
func InternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Code: "internal_error", Message: "internal server error", Err: err}
}

// HTTPStatus maps an error to its response status code.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the JSON error response for err. Internal causes are
// logged here and replaced with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	code := "internal_error"
	message := "internal server error"
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		code = appErr.Code
		message = appErr.Message
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": message,
		"code":  code,
	})
}
