package models

import "time"

// MoodUnknown is stored when the sentiment classifier gave no label.
const MoodUnknown = "Unknown"

type User struct {
	Email        string    `db:"email" json:"email"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	WeekStartDay WeekDay   `db:"week_start_day" json:"week_start_day"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type JournalEntry struct {
	UserEmail string    `db:"user_email" json:"-"`
	Date      Date      `db:"entry_date" json:"local_date"`
	Content   string    `db:"content" json:"content"` // Encrypted in DB when a key is configured
	Weather   string    `db:"weather" json:"weather"`
	Mood      string    `db:"mood" json:"mood"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type UserProgress struct {
	UserEmail     string `db:"user_email" json:"-"`
	CurrentStreak int    `db:"current_streak" json:"current_streak"`
	TotalXP       int    `db:"total_xp" json:"total_xp"`
	CurrentLevel  int    `db:"current_level" json:"current_level"`
	LastEntryDate Date   `db:"last_journal_date" json:"last_journal_date"`
}

// DefaultProgress is the row a user has before their first entry.
func DefaultProgress(email string) UserProgress {
	return UserProgress{UserEmail: email, CurrentLevel: 1}
}

type Achievement struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Icon        string     `db:"icon" json:"icon"`
	UnlockedAt  *time.Time `db:"unlocked_at" json:"unlocked_at,omitempty"`
	Unlocked    bool       `db:"-" json:"unlocked"`
}

type Quest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	XPReward    int    `json:"xp_reward"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
}

// AddProgress advances the quest, clamping at the target.
func (q *Quest) AddProgress(amount int) {
	if q.Completed || amount <= 0 {
		return
	}
	q.Progress += amount
	if q.Progress >= q.Target {
		q.Progress = q.Target
		q.Completed = true
	}
}
