package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/service"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// validatable is implemented by request payloads.
type validatable interface {
	Validate() error
}

// decodeValid decodes and validates a payload, writing a 400 on failure.
func decodeValid(w http.ResponseWriter, r *http.Request, target validatable) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := target.Validate(); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses the named path value as an ID, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

// serviceError maps a service failure onto an HTTP status. Unclassified
// errors are logged and reported as a generic 500.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidState):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	default:
		slog.Error("request failed", "rid", RequestID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
