package services

import (
	"context"
	"errors"
	"time"

	"smartjournal/internal/models"
	"smartjournal/internal/progression"
	"smartjournal/internal/store"
)

const (
	longEntryThreshold = 100
	nightStartHour     = 20
)

type questDef struct {
	id          string
	description string
	target      int
	xpReward    int
	progress    func(e *models.JournalEntry, loc *time.Location) int
}

var dailyQuestDefs = []questDef{
	{"q_entry", "Write a journal entry", 1, 50, func(e *models.JournalEntry, _ *time.Location) int {
		return 1
	}},
	{"q_long", "Write over 100 characters", 1, 100, func(e *models.JournalEntry, _ *time.Location) int {
		if progression.ContentLength(e.Content) > longEntryThreshold {
			return 1
		}
		return 0
	}},
	{"q_night", "Journal after 8 PM", 1, 150, func(e *models.JournalEntry, loc *time.Location) int {
		if e.UpdatedAt.In(loc).Hour() >= nightStartHour {
			return 1
		}
		return 0
	}},
}

// QuestTracker derives the daily quests from the day's entry. Nothing is
// persisted; each call recomputes from scratch.
type QuestTracker struct {
	store store.Store
	loc   *time.Location
}

func NewQuestTracker(st store.Store, loc *time.Location) *QuestTracker {
	if loc == nil {
		loc = time.Local
	}
	return &QuestTracker{store: st, loc: loc}
}

func (q *QuestTracker) DailyQuests(ctx context.Context, email string, date models.Date) ([]models.Quest, error) {
	entry, err := q.store.Entries().Get(ctx, email, date)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return buildQuests(entry, q.loc), nil
}

func buildQuests(entry *models.JournalEntry, loc *time.Location) []models.Quest {
	quests := make([]models.Quest, 0, len(dailyQuestDefs))
	for _, def := range dailyQuestDefs {
		quest := models.Quest{
			ID:          def.id,
			Description: def.description,
			Target:      def.target,
			XPReward:    def.xpReward,
		}
		if entry != nil {
			quest.AddProgress(def.progress(entry, loc))
		}
		quests = append(quests, quest)
	}
	return quests
}
