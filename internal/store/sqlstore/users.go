package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.WeekStartDay == "" {
		u.WeekStartDay = models.DefaultWeekStart
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	q := r.s.rebind(`INSERT INTO users (email, display_name, password_hash, week_start_day, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.s.ext.ExecContext(ctx, q, u.Email, u.DisplayName, u.PasswordHash, u.WeekStartDay, u.CreatedAt)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			return store.ErrEmailExists
		}
		return store.NewStoreError("user", "create", "could not create user", mapped)
	}
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := r.s.rebind(`SELECT email, display_name, password_hash, week_start_day, created_at FROM users WHERE email = ?`)
	if err := sqlx.GetContext(ctx, r.s.ext, &u, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, storeErr("user", "get", "could not load user", err)
	}
	return &u, nil
}

// UpdateProfile changes only the fields that are non-nil.
func (r *userRepo) UpdateProfile(ctx context.Context, email string, displayName *string, weekStart *models.WeekDay) error {
	setClauses := []string{}
	args := []any{}
	if displayName != nil {
		setClauses = append(setClauses, "display_name = ?")
		args = append(args, *displayName)
	}
	if weekStart != nil {
		setClauses = append(setClauses, "week_start_day = ?")
		args = append(args, *weekStart)
	}
	if len(setClauses) == 0 {
		return nil
	}

	q := r.s.rebind("UPDATE users SET " + strings.Join(setClauses, ", ") + " WHERE email = ?")
	args = append(args, email)
	res, err := r.s.ext.ExecContext(ctx, q, args...)
	if err != nil {
		return storeErr("user", "update", "could not update user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
