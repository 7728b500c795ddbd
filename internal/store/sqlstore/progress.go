package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"smartjournal/internal/models"
)

type progressRepo struct {
	s *Store
}

func (r *progressRepo) Get(ctx context.Context, email string) (models.UserProgress, error) {
	var p models.UserProgress
	q := r.s.rebind(`SELECT user_email, current_streak, total_xp, current_level, last_journal_date
		FROM user_progress WHERE user_email = ?`)
	if err := sqlx.GetContext(ctx, r.s.ext, &p, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultProgress(email), nil
		}
		return models.UserProgress{}, storeErr("user_progress", "get", "could not load progress", err)
	}
	return p, nil
}

func (r *progressRepo) Upsert(ctx context.Context, p models.UserProgress) error {
	q := r.s.rebind(`INSERT INTO user_progress (user_email, current_streak, total_xp, current_level, last_journal_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_email)
		DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			total_xp = EXCLUDED.total_xp,
			current_level = EXCLUDED.current_level,
			last_journal_date = EXCLUDED.last_journal_date`)
	_, err := r.s.ext.ExecContext(ctx, q, p.UserEmail, p.CurrentStreak, p.TotalXP, p.CurrentLevel, p.LastEntryDate)
	if err != nil {
		return storeErr("user_progress", "upsert", "could not save progress", err)
	}
	return nil
}
