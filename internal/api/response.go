package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/erazemk/izposoja/internal/auth"
	"github.com/erazemk/izposoja/internal/lending"
)

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

// writeError maps a service error to its HTTP status. Unexpected errors are
// logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, lending.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lending.ErrForbidden):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, lending.ErrInvalidState), errors.Is(err, lending.ErrValidation):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lending.ErrConflict):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		jsonError(w, http.StatusUnauthorized, "invalid token")
	default:
		log.Error().Err(err).Msg("request failed")
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses the named path parameter as a row ID.
func pathID(w http.ResponseWriter, r *http.Request, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

// orEmpty keeps empty lists encoding as [] rather than null.
func orEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
