package sqlstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartjournal/internal/db"
	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

const testEmail = "s100201@student.fop"

func setupTestStore(t *testing.T, opts ...Option) (*Store, *sqlx.DB) {
	t.Helper()
	ctx := context.Background()

	conn, err := db.Open(ctx, db.Options{Driver: db.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.RunMigrations(ctx, conn))

	s := New(conn, opts...)
	require.NoError(t, s.Users().Create(ctx, &models.User{
		Email:        testEmail,
		DisplayName:  "Student",
		PasswordHash: "x",
	}))
	return s, conn
}

func entry(date models.Date, content string) *models.JournalEntry {
	return &models.JournalEntry{
		UserEmail: testEmail,
		Date:      date,
		Content:   content,
		Weather:   "Sunny 28°C",
		Mood:      "POSITIVE",
	}
}

func TestEntryUpsertReplacesExistingDay(t *testing.T) {
	s, conn := setupTestStore(t)
	ctx := context.Background()
	d := models.NewDate(2026, 10, 14)

	require.NoError(t, s.Entries().Upsert(ctx, entry(d, "first draft")))
	second := entry(d, "second draft")
	second.Mood = "NEGATIVE"
	require.NoError(t, s.Entries().Upsert(ctx, second))

	got, err := s.Entries().Get(ctx, testEmail, d)
	require.NoError(t, err)
	assert.Equal(t, "second draft", got.Content)
	assert.Equal(t, "NEGATIVE", got.Mood)
	assert.Equal(t, "2026-10-14", got.Date.String())

	var rows int
	require.NoError(t, conn.Get(&rows, `SELECT COUNT(*) FROM journals`))
	assert.Equal(t, 1, rows)
}

func TestEntryGetMissing(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.Entries().Get(context.Background(), testEmail, models.NewDate(2026, 1, 1))
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
	assert.False(t, store.IsStorageError(err))
}

func TestEntryListRecentAndRange(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	start := models.NewDate(2026, 10, 1)
	for i := 0; i < 6; i++ {
		require.NoError(t, s.Entries().Upsert(ctx, entry(start.AddDays(i), "day")))
	}

	recent, err := s.Entries().ListRecent(ctx, testEmail, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "2026-10-06", recent[0].Date.String())
	assert.Equal(t, "2026-10-04", recent[2].Date.String())

	ranged, err := s.Entries().ListRange(ctx, testEmail, start.AddDays(1), start.AddDays(3))
	require.NoError(t, err)
	require.Len(t, ranged, 3)
	assert.Equal(t, "2026-10-02", ranged[0].Date.String())
	assert.Equal(t, "2026-10-04", ranged[2].Date.String())

	empty, err := s.Entries().ListRange(ctx, testEmail, start.AddDays(3), start)
	require.NoError(t, err)
	assert.Empty(t, empty)

	none, err := s.Entries().ListRecent(ctx, testEmail, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := s.Entries().Count(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestEntryFailuresSurfaceAsStoreError(t *testing.T) {
	s, conn := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, conn.Close())

	_, err := s.Entries().ListRecent(ctx, testEmail, 5)
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))

	err = s.Entries().Upsert(ctx, entry(models.NewDate(2026, 1, 1), "x"))
	assert.True(t, store.IsStorageError(err))
}

func TestEntryForUnknownUserIsRejected(t *testing.T) {
	s, _ := setupTestStore(t)
	e := entry(models.NewDate(2026, 1, 1), "x")
	e.UserEmail = "nobody@example.com"

	err := s.Entries().Upsert(context.Background(), e)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestProgressDefaultsAndUpsert(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p, err := s.Progress().Get(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProgress(testEmail), p)

	p.TotalXP, p.CurrentLevel, p.CurrentStreak = 570, 2, 2
	p.LastEntryDate = models.NewDate(2026, 10, 2)
	require.NoError(t, s.Progress().Upsert(ctx, p))

	p.TotalXP = 580
	require.NoError(t, s.Progress().Upsert(ctx, p))

	got, err := s.Progress().Get(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 580, got.TotalXP)
	assert.Equal(t, 2, got.CurrentLevel)
	assert.Equal(t, 2, got.CurrentStreak)
	assert.Equal(t, "2026-10-02", got.LastEntryDate.String())
}

func TestAchievementUnlockIsIdempotent(t *testing.T) {
	s, conn := setupTestStore(t)
	ctx := context.Background()
	repo := s.Achievements()

	require.NoError(t, repo.SaveDefinitions(ctx, []models.Achievement{
		{ID: "first_entry", Title: "First Steps", Description: "Write your first entry", Icon: "✍"},
		{ID: "streak_7", Title: "On Fire", Description: "7-day streak", Icon: "🔥"},
	}))

	at := time.Date(2026, 10, 14, 21, 0, 0, 0, time.UTC)
	created, err := repo.Unlock(ctx, testEmail, "first_entry", at)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Unlock(ctx, testEmail, "first_entry", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, created)

	var rows int
	require.NoError(t, conn.Get(&rows, `SELECT COUNT(*) FROM user_achievements`))
	assert.Equal(t, 1, rows)

	list, err := repo.List(ctx, testEmail)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first_entry", list[0].ID)
	assert.True(t, list[0].Unlocked)
	require.NotNil(t, list[0].UnlockedAt)
	assert.True(t, at.Equal(*list[0].UnlockedAt))
	assert.False(t, list[1].Unlocked)
	assert.Nil(t, list[1].UnlockedAt)
}

func TestSaveDefinitionsUpdatesTitles(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	repo := s.Achievements()

	require.NoError(t, repo.SaveDefinitions(ctx, []models.Achievement{{ID: "a", Title: "Old", Description: "d"}}))
	require.NoError(t, repo.SaveDefinitions(ctx, []models.Achievement{{ID: "a", Title: "New", Description: "d"}}))

	list, err := repo.List(ctx, testEmail)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "New", list[0].Title)
}

func TestUsers(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, &models.User{Email: testEmail, PasswordHash: "y"})
	assert.ErrorIs(t, err, store.ErrEmailExists)

	u, err := s.Users().GetByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, models.Sunday, u.WeekStartDay)
	assert.Equal(t, "Student", u.DisplayName)

	name := "Renamed"
	monday := models.Monday
	require.NoError(t, s.Users().UpdateProfile(ctx, testEmail, &name, &monday))
	u, err = s.Users().GetByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.DisplayName)
	assert.Equal(t, models.Monday, u.WeekStartDay)

	require.NoError(t, s.Users().UpdateProfile(ctx, testEmail, nil, nil))
	assert.ErrorIs(t, s.Users().UpdateProfile(ctx, "ghost@example.com", &name, nil), store.ErrUserNotFound)

	_, err = s.Users().GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestRunInTxRollsBackBothWrites(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	d := models.NewDate(2026, 10, 14)
	boom := errors.New("progress write failed")

	err := s.RunInTx(ctx, func(tx store.Store) error {
		if err := tx.Entries().Upsert(ctx, entry(d, "never committed")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Entries().Get(ctx, testEmail, d)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)

	require.NoError(t, s.RunInTx(ctx, func(tx store.Store) error {
		if err := tx.Entries().Upsert(ctx, entry(d, "committed")); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.RunInTx(ctx, func(inner store.Store) error {
			p := models.DefaultProgress(testEmail)
			p.TotalXP = 60
			return inner.Progress().Upsert(ctx, p)
		})
	}))

	got, err := s.Entries().Get(ctx, testEmail, d)
	require.NoError(t, err)
	assert.Equal(t, "committed", got.Content)
	p, err := s.Progress().Get(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, 60, p.TotalXP)
}

type upperSealer struct{}

func (upperSealer) EncryptEntry(e *models.JournalEntry) error {
	e.Content = "sealed:" + strings.ToUpper(e.Content)
	return nil
}

func (upperSealer) DecryptEntry(e *models.JournalEntry) error {
	e.Content = strings.ToLower(strings.TrimPrefix(e.Content, "sealed:"))
	return nil
}

func TestSealerAppliedAtRest(t *testing.T) {
	s, conn := setupTestStore(t, WithSealer(upperSealer{}))
	ctx := context.Background()
	d := models.NewDate(2026, 10, 14)
	e := entry(d, "secret")

	require.NoError(t, s.Entries().Upsert(ctx, e))
	assert.Equal(t, "secret", e.Content, "caller's entry is not mutated")

	var raw string
	require.NoError(t, conn.Get(&raw, `SELECT content FROM journals`))
	assert.Equal(t, "sealed:SECRET", raw)

	got, err := s.Entries().Get(ctx, testEmail, d)
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Content)
}

func TestTimeoutSurfacesAsStoreError(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := s.Entries().Count(ctx, testEmail)
	require.Error(t, err)
	assert.True(t, store.IsStorageError(err))
	assert.True(t, store.IsTimeout(err))
}
