// Package store defines the persistence contracts the journal core depends on.
// Implementations live in subpackages; sqlstore is the SQL one.
package store

import (
	"context"
	"time"

	"smartjournal/internal/models"
)

// EntryRepository owns one journal entry per (user, day).
type EntryRepository interface {
	// Upsert inserts the entry or replaces content, weather and mood of the
	// existing row for the same user and day.
	Upsert(ctx context.Context, entry *models.JournalEntry) error
	// Get returns ErrEntryNotFound when the day has no entry.
	Get(ctx context.Context, email string, date models.Date) (*models.JournalEntry, error)
	// ListRecent returns up to limit entries, newest day first.
	ListRecent(ctx context.Context, email string, limit int) ([]models.JournalEntry, error)
	// ListRange returns entries with from <= day <= to, oldest first.
	ListRange(ctx context.Context, email string, from, to models.Date) ([]models.JournalEntry, error)
	Count(ctx context.Context, email string) (int, error)
}

// ProgressRepository owns one progression row per user.
type ProgressRepository interface {
	// Get returns models.DefaultProgress when the user has no row yet.
	Get(ctx context.Context, email string) (models.UserProgress, error)
	// Upsert fully replaces the row. The level is stored as given.
	Upsert(ctx context.Context, progress models.UserProgress) error
}

// AchievementRepository owns the catalog and per-user unlock records.
type AchievementRepository interface {
	SaveDefinitions(ctx context.Context, defs []models.Achievement) error
	// Unlock records the unlock unless it already exists. It reports whether
	// this call created the record; repeating it is not an error.
	Unlock(ctx context.Context, email, achievementID string, at time.Time) (bool, error)
	// List returns the whole catalog with the user's unlock state.
	List(ctx context.Context, email string) ([]models.Achievement, error)
}

// UserRepository is the slice of account storage the journal needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, displayName *string, weekStart *models.WeekDay) error
}

// Store groups the repositories behind one connection or transaction.
type Store interface {
	Entries() EntryRepository
	Progress() ProgressRepository
	Achievements() AchievementRepository
	Users() UserRepository

	// RunInTx runs fn against a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(tx Store) error) error
}
