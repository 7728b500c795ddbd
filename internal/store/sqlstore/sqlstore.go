// Package sqlstore implements store.Store on top of sqlx. Queries are written
// with ? placeholders and rebound for the connected driver, so the same code
// serves PostgreSQL (pgx) and SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"smartjournal/internal/models"
	"smartjournal/internal/store"
)

// EntrySealer transforms entry content on its way in and out of the database.
type EntrySealer interface {
	EncryptEntry(entry *models.JournalEntry) error
	DecryptEntry(entry *models.JournalEntry) error
}

type plainSealer struct{}

func (plainSealer) EncryptEntry(*models.JournalEntry) error { return nil }
func (plainSealer) DecryptEntry(*models.JournalEntry) error { return nil }

// Store is bound either to the pool or, inside RunInTx, to one transaction.
type Store struct {
	db     *sqlx.DB
	ext    sqlx.ExtContext
	sealer EntrySealer
	logger *zap.Logger
}

type Option func(*Store)

// WithSealer encrypts journal content at rest.
func WithSealer(s EntrySealer) Option {
	return func(st *Store) {
		if s != nil {
			st.sealer = s
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l
		}
	}
}

func New(db *sqlx.DB, opts ...Option) *Store {
	if db == nil {
		panic("db cannot be nil")
	}
	s := &Store{db: db, ext: db, sealer: plainSealer{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "sqlstore"))
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) Entries() store.EntryRepository { return &entryRepo{s} }
func (s *Store) Progress() store.ProgressRepository { return &progressRepo{s} }
func (s *Store) Achievements() store.AchievementRepository { return &achievementRepo{s} }
func (s *Store) Users() store.UserRepository { return &userRepo{s} }

// RunInTx begins a transaction unless the store is already bound to one, in
// which case fn joins it.
func (s *Store) RunInTx(ctx context.Context, fn func(tx store.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return store.NewStoreError("transaction", "begin", "could not begin transaction",
			errors.Join(store.ErrTransactionFailed, err))
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("failed to roll back transaction after panic",
					zap.Error(rbErr), zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	txStore := &Store{ext: tx, sealer: s.sealer, logger: s.logger}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("failed to roll back transaction",
				zap.NamedError("rollback_error", rbErr), zap.NamedError("original_error", err))
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		s.logger.Debug("rolled back transaction", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return store.NewStoreError("transaction", "commit", "could not commit transaction",
			errors.Join(store.ErrTransactionFailed, err))
	}
	return nil
}

func (s *Store) rebind(query string) string {
	return s.ext.Rebind(query)
}
