// Package commands implements journalctl, a local client for the journal
// that talks to the database directly.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smartjournal/internal/config"
	"smartjournal/internal/db"
	"smartjournal/internal/logging"
	"smartjournal/internal/services"
	"smartjournal/internal/store/sqlstore"
)

// app is the state shared by one invocation's commands.
type app struct {
	user   string
	format string

	cfg     *config.Config
	db      *sqlx.DB
	store   *sqlstore.Store
	journal *services.JournalService
	logger  *zap.Logger
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call returns independent state.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "journalctl",
		Short: "Write and inspect journal entries from the terminal",
		Long: `journalctl writes journal entries and shows progression (XP, level,
streak, quests and achievements) straight from the database.

Connection settings come from the environment (DB_DRIVER, DATABASE_URL)
and can be overridden with --db-driver and --db-dsn.

Examples:
  journalctl --db-driver sqlite3 --db-dsn journal.db migrate
  journalctl --user me@example.com submit "Long walk by the river"
  journalctl --user me@example.com progress --format json`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.user, "user", "u", os.Getenv("JOURNAL_USER"), "email of the journal owner")
	flags.String("db-driver", "", "database driver: pgx or sqlite3")
	flags.String("db-dsn", "", "database connection string or SQLite file")
	flags.StringVar(&a.format, "format", "text", "output format: text or json")

	cmd.AddCommand(
		newMigrateCmd(a),
		newSubmitCmd(a),
		newShowCmd(a),
		newRecentCmd(a),
		newWeekCmd(a),
		newProgressCmd(a),
		newAchievementsCmd(a),
		newQuestsCmd(a),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" {
		return nil
	}
	if a.format != "text" && a.format != "json" {
		return fmt.Errorf("unknown format %q", a.format)
	}

	cfg, err := config.LoadWithFlags(cmd.Flags(), map[string]string{
		"db_driver":    "db-driver",
		"database_url": "db-dsn",
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Keep stdout for command output.
	logLevel := cfg.LogLevel
	if logLevel == "info" {
		logLevel = "warn"
	}
	a.logger, err = logging.New(logLevel, "console")
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a.db, err = db.Open(a.ctx(cmd), db.Options{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return err
	}

	opts := []sqlstore.Option{sqlstore.WithLogger(a.logger)}
	if cfg.EncryptionKey != "" {
		enc, err := services.NewEncryptionService(cfg.EncryptionKey)
		if err != nil {
			return fmt.Errorf("encryption key: %w", err)
		}
		opts = append(opts, sqlstore.WithSealer(enc))
	}
	a.store = sqlstore.New(a.db, opts...)
	a.journal = services.NewJournalService(a.store, services.JournalConfig{
		StoreTimeout: cfg.StoreTimeout,
		StreakRule:   cfg.Streak(),
		Location:     loc,
	}, a.logger)
	return nil
}

func (a *app) close() error {
	if a.journal != nil {
		a.journal.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *app) requireUser() (string, error) {
	if a.user == "" {
		return "", errors.New("--user is required (or set JOURNAL_USER)")
	}
	return a.user, nil
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
