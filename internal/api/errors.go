package api

import (
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	Code    string `json:"code" example:"NOT_FOUND" doc:"Machine-readable error code"`
	Message string `json:"message" example:"contact not found" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Optional per-field error details"`

	status int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType implements huma.ContentTypeFilter.
func (e *APIError) ContentType(ct string) string {
	return ct
}

// RegisterErrorHandler overrides huma's error factory so all handlers return
// APIError bodies. Domain errors carry their own code and status; everything
// else maps from the HTTP status huma chose.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		apiErr := &APIError{
			Code:    statusToCode(status),
			Message: message,
			status:  status,
		}

		for _, err := range errs {
			var domainErr *errors.Error
			if errors.As(err, &domainErr) {
				apiErr.Code = string(domainErr.Code)
				apiErr.Message = domainErr.Message
				apiErr.Details = domainErr.Details
				apiErr.status = domainErr.HTTPStatus()
				return apiErr
			}
			switch {
			case errors.Is(err, store.ErrContactNotFound),
				errors.Is(err, store.ErrTagNotFound),
				errors.Is(err, store.ErrActivityNotFound):
				apiErr.Code = string(errors.CodeNotFound)
				apiErr.Message = err.Error()
				apiErr.status = http.StatusNotFound
				return apiErr
			}
		}

		if len(errs) > 0 && message == "" {
			apiErr.Message = errs[0].Error()
		}
		return apiErr
	}
}

func statusToCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return string(errors.CodeNotFound)
	case http.StatusConflict:
		return string(errors.CodeConflict)
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return string(errors.CodeValidation)
	case http.StatusUnauthorized:
		return string(errors.CodeUnauthorized)
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusServiceUnavailable:
		return string(errors.CodeUnavailable)
	default:
		return string(errors.CodeInternal)
	}
}
