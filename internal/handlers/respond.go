package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartjournal/internal/middleware"
	"smartjournal/internal/models"
	"smartjournal/internal/services"
	"smartjournal/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service and store errors onto status codes. Storage
// details are logged, never sent to the client.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	case store.IsNotFoundError(err):
		http.Error(w, "not found", http.StatusNotFound)
	case store.IsTimeout(err):
		logger.Warn("storage timed out", zap.Error(err))
		http.Error(w, "storage unavailable, try again", http.StatusServiceUnavailable)
	default:
		logger.Error("request failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return email, ok
}

// optionalDate parses the named query parameter; absent means zero.
func optionalDate(r *http.Request, param string) (models.Date, error) {
	s := r.URL.Query().Get(param)
	if s == "" {
		return models.Date{}, nil
	}
	return services.ParseEntryDate(param, s)
}
