package api

import (
	"errors"
	"net/http"

	"github.com/rahul/planweave/internal/core"
)

// httpStatusForDomainError maps domain error categories to HTTP status codes.
func httpStatusForDomainError(err error) (int, bool) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return 0, false
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, true
	case core.ErrCatNotFound:
		return http.StatusNotFound, true
	case core.ErrCatState:
		return http.StatusConflict, true
	case core.ErrCatPolicy:
		return http.StatusForbidden, true
	case core.ErrCatTimeout:
		return http.StatusGatewayTimeout, true
	case core.ErrCatNetwork:
		return http.StatusBadGateway, true
	default:
		return http.StatusInternalServerError, true
	}
}

func statusFor(err error) int {
	if status, ok := httpStatusForDomainError(err); ok {
		return status
	}
	return http.StatusInternalServerError
}

func codeOf(err error) string {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return domErr.Code
	}
	return ""
}

func errorMessage(err error) string {
	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		return domErr.Message
	}
	return err.Error()
}
