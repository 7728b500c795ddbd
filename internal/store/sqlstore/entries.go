package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

const entryColumns = `user_email, entry_date, content, weather, mood, created_at, updated_at`

type entryRepo struct {
	s *Store
}

func (r *entryRepo) Upsert(ctx context.Context, entry *models.JournalEntry) error {
	now := time.Now().UTC()
	row := *entry
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}
	if err := r.s.sealer.EncryptEntry(&row); err != nil {
		return store.NewStoreError("journal", "upsert", "could not encrypt content", err)
	}

	q := r.s.rebind(`INSERT INTO journals (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_email, entry_date)
		DO UPDATE SET
			content = EXCLUDED.content,
			weather = EXCLUDED.weather,
			mood = EXCLUDED.mood,
			updated_at = EXCLUDED.updated_at`)
	_, err := r.s.ext.ExecContext(ctx, q,
		row.UserEmail, row.Date, row.Content, row.Weather, row.Mood,
		row.CreatedAt.UTC(), row.UpdatedAt.UTC())
	if err != nil {
		return storeErr("journal", "upsert", "could not save entry", err)
	}
	return nil
}

func (r *entryRepo) Get(ctx context.Context, email string, date models.Date) (*models.JournalEntry, error) {
	var e models.JournalEntry
	q := r.s.rebind(`SELECT ` + entryColumns + ` FROM journals WHERE user_email = ? AND entry_date = ?`)
	if err := sqlx.GetContext(ctx, r.s.ext, &e, q, email, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrEntryNotFound
		}
		return nil, storeErr("journal", "get", "could not load entry", err)
	}
	if err := r.s.sealer.DecryptEntry(&e); err != nil {
		return nil, store.NewStoreError("journal", "get", "could not decrypt content", err)
	}
	return &e, nil
}

func (r *entryRepo) ListRecent(ctx context.Context, email string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		return []models.JournalEntry{}, nil
	}
	q := r.s.rebind(`SELECT ` + entryColumns + ` FROM journals
		WHERE user_email = ?
		ORDER BY entry_date DESC
		LIMIT ?`)
	return r.list(ctx, "list_recent", q, email, limit)
}

func (r *entryRepo) ListRange(ctx context.Context, email string, from, to models.Date) ([]models.JournalEntry, error) {
	if to.Before(from) {
		return []models.JournalEntry{}, nil
	}
	q := r.s.rebind(`SELECT ` + entryColumns + ` FROM journals
		WHERE user_email = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC`)
	return r.list(ctx, "list_range", q, email, from, to)
}

func (r *entryRepo) Count(ctx context.Context, email string) (int, error) {
	var n int
	q := r.s.rebind(`SELECT COUNT(*) FROM journals WHERE user_email = ?`)
	if err := sqlx.GetContext(ctx, r.s.ext, &n, q, email); err != nil {
		return 0, storeErr("journal", "count", "could not count entries", err)
	}
	return n, nil
}

func (r *entryRepo) list(ctx context.Context, op, q string, args ...any) ([]models.JournalEntry, error) {
	out := []models.JournalEntry{}
	if err := sqlx.SelectContext(ctx, r.s.ext, &out, q, args...); err != nil {
		return nil, storeErr("journal", op, "could not fetch entries", err)
	}
	for i := range out {
		if err := r.s.sealer.DecryptEntry(&out[i]); err != nil {
			return nil, store.NewStoreError("journal", op, "could not decrypt content", err)
		}
	}
	return out, nil
}
