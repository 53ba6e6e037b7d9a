package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/talentmatch/backend/internal/ledger"
)

// HTTPStatus maps a service error to an HTTP status code.
func HTTPStatus(err error) int {
	var (
		validationErr    *ledger.ErrValidation
		conflictErr      *ledger.ErrConflict
		authorizationErr *ledger.ErrAuthorization
		notFoundErr      *ledger.ErrNotFound
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &conflictErr):
		return http.StatusConflict
	case errors.As(err, &authorizationErr):
		return http.StatusForbidden
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// writeError renders a service error as a JSON response. Internal errors are
// logged and replaced with a generic message so details never leak to clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := errorBody{Error: err.Error()}

	var validationErr *ledger.ErrValidation
	if errors.As(err, &validationErr) {
		body.Fields = validationErr.Fields
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		body = errorBody{Error: "internal server error"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// badRequest renders a plain 400 with the given message.
func badRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(errorBody{Error: message})
}
