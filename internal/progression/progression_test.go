package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLevelFromXP(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		xp       int
		expected int
	}{
		{0, 1},
		{1, 1},
		{499, 1},
		{500, 2},
		{570, 2},
		{999, 2},
		{1000, 3},
		{49_500, 100},
		{-20, 1},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, LevelFromXP(tc.xp), "xp=%d", tc.xp)
	}

	for xp := 0; xp < 5000; xp += 37 {
		assert.Equal(t, 1+xp/500, LevelFromXP(xp))
	}
}

func TestXPForLevelAndProgress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 500, XPForLevel(1))
	assert.Equal(t, 1000, XPForLevel(2))

	into, span := ProgressToNextLevel(570)
	assert.Equal(t, 70, into)
	assert.Equal(t, 500, span)

	into, _ = ProgressToNextLevel(0)
	assert.Equal(t, 0, into)
}

func TestXPGain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 110, XPGain(false, 60))
	assert.Equal(t, 450, XPGain(false, 400))
	assert.Equal(t, 50, XPGain(false, 0))
	assert.Equal(t, 10, XPGain(true, 60))
	assert.Equal(t, 10, XPGain(true, 10_000))
	assert.Equal(t, 10_050, XPGain(false, 10_000), "creation reward is uncapped")
}

func TestContentLengthCountsRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ContentLength("hello"))
	assert.Equal(t, 3, ContentLength("日記帳"))
}

func TestStreakDelta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, StreakDelta(true))
	assert.Equal(t, 1, StreakDelta(false))
}

func TestParseStreakRule(t *testing.T) {
	t.Parallel()

	r, err := ParseStreakRule("")
	require.NoError(t, err)
	assert.Equal(t, StreakCumulative, r)

	r, err = ParseStreakRule(" Consecutive ")
	require.NoError(t, err)
	assert.Equal(t, StreakConsecutive, r)

	_, err = ParseStreakRule("weekly")
	assert.Error(t, err)
}

func TestNextStreak(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rule     StreakRule
		current  int
		last     time.Time
		date     time.Time
		isUpdate bool
		expected int
	}{
		{"update never changes streak", StreakConsecutive, 4, day("2026-10-10"), day("2026-10-10"), true, 4},
		{"cumulative first entry", StreakCumulative, 0, time.Time{}, day("2026-10-10"), false, 1},
		{"cumulative ignores gaps", StreakCumulative, 3, day("2026-10-01"), day("2026-10-10"), false, 4},
		{"consecutive first entry", StreakConsecutive, 0, time.Time{}, day("2026-10-10"), false, 1},
		{"consecutive next day", StreakConsecutive, 3, day("2026-10-09"), day("2026-10-10"), false, 4},
		{"consecutive across month end", StreakConsecutive, 2, day("2026-09-30"), day("2026-10-01"), false, 3},
		{"consecutive gap resets", StreakConsecutive, 5, day("2026-10-07"), day("2026-10-10"), false, 1},
		{"consecutive backfill keeps streak", StreakConsecutive, 5, day("2026-10-10"), day("2026-10-02"), false, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextStreak(tc.rule, tc.current, tc.last, tc.date, tc.isUpdate)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestLastEntryDate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, day("2026-10-10"), LastEntryDate(time.Time{}, day("2026-10-10")))
	assert.Equal(t, day("2026-10-11"), LastEntryDate(day("2026-10-10"), day("2026-10-11")))
	assert.Equal(t, day("2026-10-10"), LastEntryDate(day("2026-10-10"), day("2026-10-02")))
}
