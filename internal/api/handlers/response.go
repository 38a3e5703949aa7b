package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/updoot/updoot-be/internal/services"
)

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondFieldErrors reports business-rule failures. The request itself
// succeeded, so the status stays 200 and the body carries the errors.
func respondFieldErrors(w http.ResponseWriter, errs []services.FieldError) {
	respondJSON(w, http.StatusOK, map[string]any{"errors": errs})
}

// respondNotFound reports a missing resource as a 404 with the same
// {field, message} error shape the rest of the API uses.
func respondNotFound(w http.ResponseWriter, field, message string) {
	respondJSON(w, http.StatusNotFound, map[string]any{
		"errors": []services.FieldError{{Field: field, Message: message}},
	})
}

// respondInternal reports an unexpected failure. Unlike field errors it is
// never success-shaped: callers can always tell a fault from a rejection.
func respondInternal(w http.ResponseWriter) {
	respondJSON(w, http.StatusInternalServerError, map[string]any{
		"errors": []services.FieldError{{Field: "", Message: "internal server error"}},
	})
}
