package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/go-chi/render"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, kind, msg string, reasons []string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: kind, Message: msg, Errors: reasons})
}

// writeError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var reasons []string
	var re *common.ReasonsError
	if errors.As(err, &re) {
		reasons = re.Reasons
	}

	switch {
	case errors.Is(err, common.ErrValidation):
		writeStatus(w, r, http.StatusBadRequest, "validation_error", err.Error(), reasons)
	case errors.Is(err, common.ErrConflict):
		writeStatus(w, r, http.StatusBadRequest, "conflict", err.Error(), []string{err.Error()})
	case errors.Is(err, common.ErrInsufficientStock):
		writeStatus(w, r, http.StatusBadRequest, "insufficient_stock", err.Error(), nil)
	case errors.Is(err, common.ErrorNotFound):
		writeStatus(w, r, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrAuthentication):
		writeStatus(w, r, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.Is(err, common.ErrForbidden):
		writeStatus(w, r, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		s.log.Error(r.Context(), "request failed", append(logging.ErrAttrs(err), "path", r.URL.Path)...)
		writeStatus(w, r, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeStatus(w, r, http.StatusBadRequest, "bad_request", msg, []string{msg})
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	writeStatus(w, r, http.StatusNotFound, "not_found", msg, nil)
}
