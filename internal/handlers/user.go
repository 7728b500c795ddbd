package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

type UserHandler struct {
	users  store.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users store.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}

// UpdateMe updates provided fields on the current user's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body struct {
		DisplayName  *string `json:"display_name"`
		WeekStartDay *string `json:"week_start_day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var weekStart *models.WeekDay
	if body.WeekStartDay != nil {
		if strings.TrimSpace(*body.WeekStartDay) == "" {
			http.Error(w, "invalid week_start_day", http.StatusBadRequest)
			return
		}
		wd, err := models.ParseWeekDay(*body.WeekStartDay)
		if err != nil {
			http.Error(w, "invalid week_start_day", http.StatusBadRequest)
			return
		}
		weekStart = &wd
	}
	if body.DisplayName != nil {
		trimmed := strings.TrimSpace(*body.DisplayName)
		body.DisplayName = &trimmed
	}
	if body.DisplayName == nil && weekStart == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.users.UpdateProfile(r.Context(), email, body.DisplayName, weekStart); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
