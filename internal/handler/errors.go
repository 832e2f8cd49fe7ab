package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/pkordes/homestay/backend/internal/domain"
)

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError rejects a request before it reaches the service layer
// (missing or malformed body, bad path or query parameter).
func requestError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorBody(w, r, http.StatusUnprocessableEntity, "validation_error", message)
}

// decodeError reports a body that could not be read or parsed. A body cut off
// by the size limit is a 413.
func decodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeErrorBody(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	}
	requestError(w, r, "request body is not valid JSON")
}

// validationError reports the first failing field of a validator error.
func validationError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		requestError(w, r, fmt.Sprintf("%s failed %s", strings.ToLower(f.Field()), f.Tag()))
		return
	}
	requestError(w, r, err.Error())
}

// serviceError maps a service error onto a status by its sentinel kind.
// Anything else is an infrastructure fault: it is logged with op and the
// client gets a bare 500.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, r, http.StatusNotFound, "not_found", domain.Message(err))
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, r, http.StatusConflict, "conflict", domain.Message(err))
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, r, http.StatusForbidden, "forbidden", domain.Message(err))
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, "validation_error", domain.Message(err))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "op", op, "err", err)
		writeErrorBody(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
