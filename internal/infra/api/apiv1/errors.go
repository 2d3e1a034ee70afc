package apiv1

import (
	"encoding/json"
	"errors"
	"net/http"

	"fideliza/internal/domain"
	"fideliza/internal/infra/logging"
	"fideliza/internal/usecase"
)

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrSubscriptionNotActive),
		errors.Is(err, domain.ErrQRExpired),
		errors.Is(err, domain.ErrInvalidRestaurant),
		errors.Is(err, domain.ErrNoVisitsRemaining),
		errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// reasonFor is the message placed in the error body.
func reasonFor(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "Invalid request"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many attempts"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "Already exists"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	}
	return usecase.RejectionReason(err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: reasonFor(err)}
	var verr *ValidationError
	if errors.As(err, &verr) {
		body.Details = verr.Details
	}
	if status >= http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
