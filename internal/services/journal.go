package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"smartjournal/internal/models"
	"smartjournal/internal/progression"
	"smartjournal/internal/store"
)

// DefaultStoreTimeout bounds each unit of repository work.
const DefaultStoreTimeout = 5 * time.Second

type SubmitRequest struct {
	UserID  string
	Date    models.Date
	Content string
	Weather string
	Mood    string
}

type SubmitResult struct {
	Entry         models.JournalEntry `json:"entry"`
	IsUpdate      bool                `json:"is_update"`
	XPGained      int                 `json:"xp_gained"`
	NewXP         int                 `json:"new_xp"`
	NewLevel      int                 `json:"new_level"`
	NewStreak     int                 `json:"new_streak"`
	PreviousLevel int                 `json:"previous_level"`
	LeveledUp     bool                `json:"leveled_up"`
	Unlocked      []string            `json:"unlocked_achievements,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

// Completion carries the outcome of an asynchronous submission.
type Completion struct {
	Result *SubmitResult
	Err    error
}

// ProgressSummary adds progress-bar figures to the stored row.
type ProgressSummary struct {
	models.UserProgress
	XPIntoLevel int `json:"xp_into_level"`
	XPPerLevel  int `json:"xp_per_level"`
	NextLevelXP int `json:"next_level_xp"`
}

type JournalConfig struct {
	StoreTimeout time.Duration
	StreakRule   progression.StreakRule
	Location     *time.Location
	Clock        Clock
}

// JournalService is the single entry point for submissions and the read
// side built on the same history. Submissions for one user are serialized;
// different users never wait on each other.
type JournalService struct {
	store        store.Store
	achievements *AchievementRegistry
	quests       *QuestTracker
	weekly       *WeeklyAggregator
	locks        *userLocks
	cfg          JournalConfig
	logger       *zap.Logger
	inflight     sync.WaitGroup
}

func NewJournalService(st store.Store, cfg JournalConfig, logger *zap.Logger) *JournalService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.StreakRule == "" {
		cfg.StreakRule = progression.StreakCumulative
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{
		store:        st,
		achievements: NewAchievementRegistry(st, cfg.Clock, logger),
		quests:       NewQuestTracker(st, cfg.Location),
		weekly:       NewWeeklyAggregator(st),
		locks:        newUserLocks(),
		cfg:          cfg,
		logger:       logger.With(zap.String("component", "journal")),
	}
}

func (s *JournalService) Achievements() *AchievementRegistry { return s.achievements }

// Today is the current calendar day in the configured location.
func (s *JournalService) Today() models.Date {
	return models.DateOf(s.cfg.Clock.Now().In(s.cfg.Location))
}

// SubmitEntry validates, then creates or replaces the day's entry and
// updates progress in one transaction. Achievement failures after the
// commit are reported in Warnings and never undo the write.
func (s *JournalService) SubmitEntry(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	req, err := normalizeSubmit(req)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, req)
}

// Submit runs the submission on its own goroutine and delivers exactly one
// Completion, unless ctx ends first. In that case the writes still run to
// completion and the channel is closed without a value. Validation errors
// are returned immediately.
func (s *JournalService) Submit(ctx context.Context, req SubmitRequest) (<-chan Completion, error) {
	req, err := normalizeSubmit(req)
	if err != nil {
		return nil, err
	}

	out := make(chan Completion, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(out)

		res, err := s.submit(context.WithoutCancel(ctx), req)
		if ctx.Err() != nil {
			s.logger.Debug("caller went away, dropping submission result",
				zap.String("user", req.UserID), zap.Stringer("date", req.Date), zap.Error(err))
			return
		}
		out <- Completion{Result: res, Err: err}
	}()
	return out, nil
}

// Close blocks until every asynchronous submission has finished. Call it
// before closing the database.
func (s *JournalService) Close() {
	s.inflight.Wait()
}

func normalizeSubmit(req SubmitRequest) (SubmitRequest, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return req, &ValidationError{Field: "user", Reason: "is required"}
	}
	if req.Date.IsZero() {
		return req, &ValidationError{Field: "date", Reason: "is required"}
	}
	if strings.TrimSpace(req.Content) == "" {
		return req, &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Mood) == "" {
		req.Mood = models.MoodUnknown
	}
	return req, nil
}

func (s *JournalService) submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	unlock := s.locks.Lock(req.UserID)
	defer unlock()

	now := s.cfg.Clock.Now().UTC()
	var res SubmitResult

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	err := s.store.RunInTx(opCtx, func(tx store.Store) error {
		existing, err := tx.Entries().Get(opCtx, req.UserID, req.Date)
		switch {
		case err == nil:
			res.IsUpdate = true
		case errors.Is(err, store.ErrNotFound):
		default:
			return err
		}

		prev, err := tx.Progress().Get(opCtx, req.UserID)
		if err != nil {
			return err
		}

		res.PreviousLevel = prev.CurrentLevel
		res.XPGained = progression.XPGain(res.IsUpdate, progression.ContentLength(req.Content))
		res.NewXP = prev.TotalXP + res.XPGained
		res.NewLevel = progression.LevelFromXP(res.NewXP)
		res.NewStreak = progression.NextStreak(s.cfg.StreakRule, prev.CurrentStreak,
			prev.LastEntryDate.Time(), req.Date.Time(), res.IsUpdate)
		res.LeveledUp = res.NewLevel > res.PreviousLevel

		res.Entry = models.JournalEntry{
			UserEmail: req.UserID,
			Date:      req.Date,
			Content:   req.Content,
			Weather:   req.Weather,
			Mood:      req.Mood,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing != nil {
			res.Entry.CreatedAt = existing.CreatedAt
		}
		if err := tx.Entries().Upsert(opCtx, &res.Entry); err != nil {
			return err
		}

		next := models.UserProgress{
			UserEmail:     req.UserID,
			CurrentStreak: res.NewStreak,
			TotalXP:       res.NewXP,
			CurrentLevel:  res.NewLevel,
			LastEntryDate: models.DateOf(progression.LastEntryDate(prev.LastEntryDate.Time(), req.Date.Time())),
		}
		return tx.Progress().Upsert(opCtx, next)
	})
	cancel()
	if err != nil {
		s.logger.Error("journal submission failed",
			zap.String("user", req.UserID), zap.Stringer("date", req.Date), zap.Error(err))
		return nil, fmt.Errorf("submit entry: %w", err)
	}

	s.logger.Info("journal entry saved",
		zap.String("user", req.UserID),
		zap.Stringer("date", req.Date),
		zap.Bool("is_update", res.IsUpdate),
		zap.Int("xp_gained", res.XPGained),
		zap.Int("total_xp", res.NewXP),
		zap.Int("level", res.NewLevel),
		zap.Int("streak", res.NewStreak),
	)
	if res.LeveledUp {
		s.logger.Info("level up", zap.String("user", req.UserID), zap.Int("level", res.NewLevel))
	}

	s.evaluateAchievements(ctx, &res)
	return &res, nil
}

func (s *JournalService) evaluateAchievements(ctx context.Context, res *SubmitResult) {
	achCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	email := res.Entry.UserEmail
	total, err := s.store.Entries().Count(achCtx, email)
	if err == nil {
		res.Unlocked, err = s.achievements.Evaluate(achCtx, email, EvalContext{
			TotalEntries:  total,
			CurrentStreak: res.NewStreak,
			CurrentLevel:  res.NewLevel,
		})
	}
	if err != nil {
		s.logger.Warn("achievement evaluation failed", zap.String("user", email), zap.Error(err))
		res.Warnings = append(res.Warnings, "achievements could not be evaluated: "+err.Error())
	}
}

func (s *JournalService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

// GetEntry returns store.ErrEntryNotFound when the day is empty.
func (s *JournalService) GetEntry(ctx context.Context, email string, date models.Date) (*models.JournalEntry, error) {
	if date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "is required"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Entries().Get(ctx, email, date)
}

func (s *JournalService) ListRecent(ctx context.Context, email string, limit int) ([]models.JournalEntry, error) {
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must not be negative"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.Entries().ListRecent(ctx, email, limit)
}

func (s *JournalService) Progress(ctx context.Context, email string) (*ProgressSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.store.Progress().Get(ctx, email)
	if err != nil {
		return nil, err
	}
	into, span := progression.ProgressToNextLevel(p.TotalXP)
	return &ProgressSummary{
		UserProgress: p,
		XPIntoLevel:  into,
		XPPerLevel:   span,
		NextLevelXP:  progression.XPForLevel(p.CurrentLevel),
	}, nil
}

func (s *JournalService) ListAchievements(ctx context.Context, email string) ([]models.Achievement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.achievements.List(ctx, email)
}

func (s *JournalService) DailyQuests(ctx context.Context, email string, date models.Date) ([]models.Quest, error) {
	if date.IsZero() {
		date = s.Today()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.quests.DailyQuests(ctx, email, date)
}

// CurrentWeek is WeeklyRange anchored on today in the configured location.
func (s *JournalService) CurrentWeek(weekStart models.WeekDay) (start, end models.Date) {
	return WeeklyRange(weekStart.Weekday(), s.Today())
}

// WeeklyReport covers the user's week up to today (or the given day).
func (s *JournalService) WeeklyReport(ctx context.Context, email string, today models.Date) (*WeeklyReport, error) {
	if today.IsZero() {
		today = s.Today()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.weekly.Report(ctx, email, today)
}
