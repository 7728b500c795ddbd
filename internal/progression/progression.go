// Package progression holds the pure XP, level and streak rules.
// Nothing here performs I/O.
package progression

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// XPPerLevel is the flat amount of XP each level spans.
	XPPerLevel = 500
	// BaseReward is granted for the first entry written on a day.
	BaseReward = 50
	// UpdateReward is granted for rewriting an entry that already exists.
	UpdateReward = 10
)

// LevelFromXP returns 1 + xp/500. Levels start at 1.
func LevelFromXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/XPPerLevel
}

// XPForLevel is the XP threshold to reach the level after the given one.
// It is used for progress display only.
func XPForLevel(level int) int {
	return level * XPPerLevel
}

// ProgressToNextLevel returns how far xp is into its current level and the
// size of a level, e.g. (70, 500) for 570 XP.
func ProgressToNextLevel(xp int) (into, span int) {
	if xp < 0 {
		xp = 0
	}
	return xp % XPPerLevel, XPPerLevel
}

// ContentLength counts code points, not bytes.
func ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// XPGain is the reward for one submission.
func XPGain(isUpdate bool, contentLength int) int {
	if isUpdate {
		return UpdateReward
	}
	if contentLength < 0 {
		contentLength = 0
	}
	return BaseReward + contentLength
}

// StreakDelta is 0 for an update and 1 for a newly created day.
func StreakDelta(isUpdate bool) int {
	if isUpdate {
		return 0
	}
	return 1
}

// StreakRule selects how a newly created day affects the streak.
type StreakRule string

const (
	// StreakCumulative counts created days and never resets on a gap.
	StreakCumulative StreakRule = "cumulative"
	// StreakConsecutive resets to 1 when a day is skipped.
	StreakConsecutive StreakRule = "consecutive"
)

// ParseStreakRule accepts the rule names case-insensitively. Empty means cumulative.
func ParseStreakRule(s string) (StreakRule, error) {
	switch StreakRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", StreakCumulative:
		return StreakCumulative, nil
	case StreakConsecutive:
		return StreakConsecutive, nil
	}
	return "", fmt.Errorf("unknown streak rule %q", s)
}

// NextStreak applies rule to the current streak. last is the latest day an
// entry was created on (zero when none); date is the day being written.
func NextStreak(rule StreakRule, current int, last, date time.Time, isUpdate bool) int {
	if current < 0 {
		current = 0
	}
	if isUpdate {
		return current
	}
	if rule != StreakConsecutive || last.IsZero() {
		return current + StreakDelta(isUpdate)
	}

	last = truncateDay(last)
	date = truncateDay(date)
	switch {
	case date.Equal(last.AddDate(0, 0, 1)):
		return current + 1
	case date.After(last):
		return 1
	default:
		// back-filled day
		if current == 0 {
			return 1
		}
		return current
	}
}

// LastEntryDate keeps the later of the stored date and the one being written.
func LastEntryDate(prev, date time.Time) time.Time {
	if prev.IsZero() || date.After(prev) {
		return date
	}
	return prev
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
