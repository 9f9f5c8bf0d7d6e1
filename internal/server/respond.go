package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/mvx/internal/services"
	"github.com/desertthunder/mvx/internal/shared"
)

const maxRequestBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// statusFor maps an error to the response status.
func statusFor(err error) int {
	var httpErr *services.HTTPError
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrNoCurrentUser),
		errors.Is(err, shared.ErrLoginFailed):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrEmailRegistered):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidAPIKey):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
