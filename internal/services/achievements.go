package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

// EvalContext is the post-write state achievements are judged against.
type EvalContext struct {
	TotalEntries  int
	CurrentStreak int
	CurrentLevel  int
}

type achievementRule struct {
	def models.Achievement
	met func(EvalContext) bool
}

func entriesAtLeast(n int) func(EvalContext) bool {
	return func(c EvalContext) bool { return c.TotalEntries >= n }
}

func streakAtLeast(n int) func(EvalContext) bool {
	return func(c EvalContext) bool { return c.CurrentStreak >= n }
}

func levelAtLeast(n int) func(EvalContext) bool {
	return func(c EvalContext) bool { return c.CurrentLevel >= n }
}

var defaultAchievementRules = []achievementRule{
	{models.Achievement{ID: "first_entry", Title: "First Steps", Description: "Write your first journal entry", Icon: "✍️"}, entriesAtLeast(1)},
	{models.Achievement{ID: "entries_10", Title: "Regular", Description: "Write 10 journal entries", Icon: "📓"}, entriesAtLeast(10)},
	{models.Achievement{ID: "entries_50", Title: "Chronicler", Description: "Write 50 journal entries", Icon: "📚"}, entriesAtLeast(50)},
	{models.Achievement{ID: "streak_3", Title: "Warming Up", Description: "Reach a 3-day streak", Icon: "✨"}, streakAtLeast(3)},
	{models.Achievement{ID: "streak_7", Title: "On Fire", Description: "Reach a 7-day streak", Icon: "🔥"}, streakAtLeast(7)},
	{models.Achievement{ID: "streak_30", Title: "Unstoppable", Description: "Reach a 30-day streak", Icon: "🏆"}, streakAtLeast(30)},
	{models.Achievement{ID: "level_5", Title: "Night Owl Unlocked", Description: "Reach level 5 and unlock dark mode", Icon: "🌙"}, levelAtLeast(5)},
	{models.Achievement{ID: "level_10", Title: "Seasoned Writer", Description: "Reach level 10", Icon: "🖋️"}, levelAtLeast(10)},
	{models.Achievement{ID: "level_100", Title: "Legend", Description: "Reach level 100", Icon: "👑"}, levelAtLeast(100)},
}

// AchievementRegistry maps a user's history onto the fixed rule set and
// records unlocks exactly once.
type AchievementRegistry struct {
	store  store.Store
	rules  []achievementRule
	clock  Clock
	logger *zap.Logger
}

func NewAchievementRegistry(st store.Store, clock Clock, logger *zap.Logger) *AchievementRegistry {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AchievementRegistry{
		store:  st,
		rules:  defaultAchievementRules,
		clock:  clock,
		logger: logger.With(zap.String("component", "achievements")),
	}
}

// Definitions returns the catalog in rule order.
func (r *AchievementRegistry) Definitions() []models.Achievement {
	defs := make([]models.Achievement, 0, len(r.rules))
	for _, rule := range r.rules {
		defs = append(defs, rule.def)
	}
	return defs
}

// SyncCatalog writes the definitions so unlock records can reference them.
func (r *AchievementRegistry) SyncCatalog(ctx context.Context) error {
	return r.store.Achievements().SaveDefinitions(ctx, r.Definitions())
}

// Evaluate unlocks every satisfied rule and returns the ids this call
// unlocked. A failing unlock does not stop the remaining rules; all failures
// are returned joined.
func (r *AchievementRegistry) Evaluate(ctx context.Context, email string, ec EvalContext) ([]string, error) {
	var unlocked []string
	var errs []error
	now := r.clock.Now()
	for _, rule := range r.rules {
		if !rule.met(ec) {
			continue
		}
		created, err := r.store.Achievements().Unlock(ctx, email, rule.def.ID, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if created {
			unlocked = append(unlocked, rule.def.ID)
			r.logger.Info("achievement unlocked",
				zap.String("user", email),
				zap.String("achievement", rule.def.ID))
		}
	}
	return unlocked, errors.Join(errs...)
}

// List returns the catalog with the user's unlock state.
func (r *AchievementRegistry) List(ctx context.Context, email string) ([]models.Achievement, error) {
	return r.store.Achievements().List(ctx, email)
}
