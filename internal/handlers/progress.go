package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"smartjournal/internal/services"
)

// ProgressHandler serves the read-only gamification views.
type ProgressHandler struct {
	svc    *services.JournalService
	logger *zap.Logger
}

func NewProgressHandler(svc *services.JournalService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{svc: svc, logger: logger}
}

// GetProgress godoc
// @Summary XP, level, streak and distance to the next level
// @Tags progress
// @Produce json
// @Success 200 {object} services.ProgressSummary
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Progress(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetAchievements godoc
// @Summary Achievement catalog with unlock state
// @Tags progress
// @Produce json
// @Success 200 {array} models.Achievement
// @Router /achievements [get]
func (h *ProgressHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	list, err := h.svc.ListAchievements(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetQuests godoc
// @Summary Daily quests for a day
// @Tags progress
// @Produce json
// @Param local_date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.Quest
// @Router /quests [get]
func (h *ProgressHandler) GetQuests(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	date, err := optionalDate(r, "local_date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	quests, err := h.svc.DailyQuests(r.Context(), email, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}
