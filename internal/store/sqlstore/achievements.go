package sqlstore

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"smartjournal/internal/models"
)

type achievementRepo struct {
	s *Store
}

func (r *achievementRepo) SaveDefinitions(ctx context.Context, defs []models.Achievement) error {
	q := r.s.rebind(`INSERT INTO achievement_definitions (id, title, description, icon)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			icon = EXCLUDED.icon`)
	for _, d := range defs {
		if _, err := r.s.ext.ExecContext(ctx, q, d.ID, d.Title, d.Description, d.Icon); err != nil {
			return storeErr("achievement_definitions", "save", "could not save definition "+d.ID, err)
		}
	}
	return nil
}

// Unlock is a conditional insert, so concurrent unlocks of the same
// achievement cannot produce two records or an error.
func (r *achievementRepo) Unlock(ctx context.Context, email, achievementID string, at time.Time) (bool, error) {
	q := r.s.rebind(`INSERT INTO user_achievements (user_email, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_email, achievement_id) DO NOTHING`)
	res, err := r.s.ext.ExecContext(ctx, q, email, achievementID, at.UTC())
	if err != nil {
		return false, storeErr("user_achievements", "unlock", "could not unlock "+achievementID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("user_achievements", "unlock", "could not read affected rows", err)
	}
	return n == 1, nil
}

func (r *achievementRepo) List(ctx context.Context, email string) ([]models.Achievement, error) {
	out := []models.Achievement{}
	q := r.s.rebind(`SELECT ad.id, ad.title, ad.description, ad.icon, ua.unlocked_at
		FROM achievement_definitions ad
		LEFT JOIN user_achievements ua ON ad.id = ua.achievement_id AND ua.user_email = ?
		ORDER BY ad.id`)
	if err := sqlx.SelectContext(ctx, r.s.ext, &out, q, email); err != nil {
		return nil, storeErr("achievement_definitions", "list", "could not list achievements", err)
	}
	for i := range out {
		out[i].Unlocked = out[i].UnlockedAt != nil
	}
	return out, nil
}
