package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartjournal/internal/models"
)

func TestWeeklyRange(t *testing.T) {
	wednesday := models.NewDate(2026, 10, 14)

	tests := []struct {
		name      string
		weekStart time.Weekday
		today     models.Date
		wantStart string
	}{
		{"monday start, wednesday today", time.Monday, wednesday, "2026-10-12"},
		{"sunday start, wednesday today", time.Sunday, wednesday, "2026-10-11"},
		{"today is the start day", time.Wednesday, wednesday, "2026-10-14"},
		{"start day is tomorrow", time.Thursday, wednesday, "2026-10-08"},
		{"saturday start, sunday today", time.Saturday, models.NewDate(2026, 10, 18), "2026-10-17"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeeklyRange(tt.weekStart, tt.today)
			assert.Equal(t, tt.wantStart, start.String())
			assert.Equal(t, tt.today, end)
			assert.Equal(t, tt.weekStart, start.Weekday())
		})
	}
}

func TestWeeklyReport(t *testing.T) {
	st := newTestStore(t)
	svc := newTestService(t, st, JournalConfig{})
	ctx := context.Background()

	monday := models.Monday
	require.NoError(t, st.Users().UpdateProfile(ctx, testEmail, nil, &monday))

	for _, e := range []struct {
		day  int
		mood string
	}{
		{11, "POSITIVE"}, // previous Sunday, outside a Monday week
		{12, "POSITIVE"},
		{13, "NEGATIVE"},
		{14, "POSITIVE"},
		{15, "NEUTRAL"}, // after today
	} {
		_, err := svc.SubmitEntry(ctx, SubmitRequest{
			UserID:  testEmail,
			Date:    models.NewDate(2026, 10, e.day),
			Content: "entry",
			Mood:    e.mood,
		})
		require.NoError(t, err)
	}

	report, err := svc.WeeklyReport(ctx, testEmail, models.NewDate(2026, 10, 14))
	require.NoError(t, err)
	assert.Equal(t, models.Monday, report.WeekStartDay)
	assert.Equal(t, "2026-10-12", report.Start.String())
	assert.Equal(t, "2026-10-14", report.End.String())
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "2026-10-12", report.Entries[0].Date.String())
	assert.Equal(t, map[string]int{"POSITIVE": 2, "NEGATIVE": 1}, report.MoodCounts)
}

func TestWeeklyReportDefaultsForUnknownUser(t *testing.T) {
	svc := newTestService(t, newTestStore(t), JournalConfig{})

	report, err := svc.WeeklyReport(context.Background(), "ghost@example.com", models.Date{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWeekStart, report.WeekStartDay)
	// testNow is a Wednesday
	assert.Equal(t, "2026-10-11", report.Start.String())
	assert.Equal(t, "2026-10-14", report.End.String())
	assert.Empty(t, report.Entries)
	assert.Empty(t, report.MoodCounts)
}

func TestCurrentWeek(t *testing.T) {
	svc := NewJournalService(newTestStore(t), JournalConfig{Clock: fixedClock{testNow}, Location: time.UTC}, nil)

	start, end := svc.CurrentWeek(models.Monday)
	assert.Equal(t, "2026-10-12", start.String())
	assert.Equal(t, "2026-10-14", end.String())

	start, _ = svc.CurrentWeek(models.Wednesday)
	assert.Equal(t, "2026-10-14", start.String())
}
