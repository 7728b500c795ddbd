package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"smartjournal/internal/services"
)

const (
	defaultListLimit = 30
	maxListLimit     = 365
)

type JournalHandler struct {
	svc    *services.JournalService
	logger *zap.Logger
}

func NewJournalHandler(svc *services.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{svc: svc, logger: logger}
}

type journalRequest struct {
	LocalDate string `json:"local_date"` // YYYY-MM-DD provided by frontend
	Content   string `json:"content"`
	Weather   string `json:"weather"`
	Mood      string `json:"mood"`
}

// Submit godoc
// @Summary Create or replace the entry for a day
// @Description Awards XP, updates streak and level, and unlocks achievements.
// @Tags journal
// @Accept json
// @Produce json
// @Param body body journalRequest true "Entry"
// @Success 200 {object} services.SubmitResult
// @Failure 400 {string} string "invalid body"
// @Failure 503 {string} string "storage unavailable"
// @Router /journal [post]
func (h *JournalHandler) Submit(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req journalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	date, err := services.ParseEntryDate("local_date", req.LocalDate)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	done, err := h.svc.Submit(r.Context(), services.SubmitRequest{
		UserID:  email,
		Date:    date,
		Content: req.Content,
		Weather: req.Weather,
		Mood:    req.Mood,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	c, ok := <-done
	if !ok {
		// client disconnected; the entry is still saved
		return
	}
	if c.Err != nil {
		writeError(w, h.logger, c.Err)
		return
	}
	writeJSON(w, http.StatusOK, c.Result)
}

// List godoc
// @Summary Recent entries, newest first
// @Tags journal
// @Produce json
// @Param limit query int false "max entries (default 30)"
// @Success 200 {array} models.JournalEntry
// @Router /journal [get]
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	entries, err := h.svc.ListRecent(r.Context(), email, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get godoc
// @Summary One day's entry
// @Tags journal
// @Produce json
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} models.JournalEntry
// @Failure 404 {string} string "not found"
// @Router /journal/{date} [get]
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	date, err := services.ParseEntryDate("date", chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	entry, err := h.svc.GetEntry(r.Context(), email, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Week godoc
// @Summary Entries of the current week and their mood tally
// @Tags journal
// @Produce json
// @Param local_date query string false "the user's today, YYYY-MM-DD"
// @Success 200 {object} services.WeeklyReport
// @Router /journal/week [get]
func (h *JournalHandler) Week(w http.ResponseWriter, r *http.Request) {
	email, ok := currentUser(w, r)
	if !ok {
		return
	}
	today, err := optionalDate(r, "local_date")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	report, err := h.svc.WeeklyReport(r.Context(), email, today)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
