package httpadapter

import (
	"net/http"

	"github.com/kirillkom/ats-match-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrConfigInvalid):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrAttemptNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
