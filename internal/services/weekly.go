package services

import (
	"context"
	"errors"
	"time"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

// WeeklyRange returns [most recent weekStart on or before today, today].
func WeeklyRange(weekStart time.Weekday, today models.Date) (start, end models.Date) {
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	return today.AddDays(-offset), today
}

type WeeklyReport struct {
	WeekStartDay models.WeekDay        `json:"week_start_day"`
	Start        models.Date           `json:"start"`
	End          models.Date           `json:"end"`
	Entries      []models.JournalEntry `json:"entries"`
	MoodCounts   map[string]int        `json:"mood_counts"`
}

type WeeklyAggregator struct {
	store store.Store
}

func NewWeeklyAggregator(st store.Store) *WeeklyAggregator {
	return &WeeklyAggregator{store: st}
}

// Report collects the user's current week. Users without an account row
// get the default week start.
func (a *WeeklyAggregator) Report(ctx context.Context, email string, today models.Date) (*WeeklyReport, error) {
	weekStart := models.DefaultWeekStart
	user, err := a.store.Users().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.WeekStartDay != "" {
			weekStart = user.WeekStartDay
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, err
	}

	start, end := WeeklyRange(weekStart.Weekday(), today)
	entries, err := a.store.Entries().ListRange(ctx, email, start, end)
	if err != nil {
		return nil, err
	}

	moods := make(map[string]int)
	for _, e := range entries {
		mood := e.Mood
		if mood == "" {
			mood = models.MoodUnknown
		}
		moods[mood]++
	}

	return &WeeklyReport{
		WeekStartDay: weekStart,
		Start:        start,
		End:          end,
		Entries:      entries,
		MoodCounts:   moods,
	}, nil
}
