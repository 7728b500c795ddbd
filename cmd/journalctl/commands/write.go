package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"smartjournal/internal/db"
	"smartjournal/internal/models"
	"smartjournal/internal/services"
	"smartjournal/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema and sync the achievement catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			if err := db.RunMigrations(ctx, a.db); err != nil {
				return err
			}
			if err := a.journal.Achievements().SyncCatalog(ctx); err != nil {
				return fmt.Errorf("sync achievements: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", a.cfg.DBDriver)
			return nil
		},
	}
}

func newSubmitCmd(a *app) *cobra.Command {
	var date, mood, weather string
	cmd := &cobra.Command{
		Use:   "submit [content...]",
		Short: "Write or replace the entry for a day",
		Long: `Write the entry for a day, replacing any entry already written for it.
Content is taken from the arguments, or from stdin when none are given
or the only argument is "-".

The account is created on first use. Accounts created here have no
password and cannot log in over HTTP.

Examples:
  journalctl --user me@example.com submit "Quiet day, finished the book"
  journalctl --user me@example.com submit --date 2026-10-12 --mood POSITIVE < entry.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			content, err := readContent(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			day, err := a.dayOrToday("date", date)
			if err != nil {
				return err
			}
			ctx := a.ctx(cmd)
			if err := a.ensureUser(cmd, email); err != nil {
				return err
			}

			res, err := a.journal.SubmitEntry(ctx, services.SubmitRequest{
				UserID:  email,
				Date:    day,
				Content: content,
				Weather: weather,
				Mood:    mood,
			})
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return printSubmit(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day of the entry, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&mood, "mood", "", "mood label, e.g. POSITIVE")
	cmd.Flags().StringVar(&weather, "weather", "", "weather snapshot, e.g. \"Sunny 28°C\"")
	return cmd
}

func readContent(in io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func (a *app) ensureUser(cmd *cobra.Command, email string) error {
	ctx := a.ctx(cmd)
	_, err := a.store.Users().GetByEmail(ctx, email)
	if err == nil || !store.IsNotFoundError(err) {
		return err
	}
	name, _, _ := strings.Cut(email, "@")
	err = a.store.Users().Create(ctx, &models.User{
		Email:        email,
		DisplayName:  name,
		WeekStartDay: models.DefaultWeekStart,
	})
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	return err
}

func (a *app) dayOrToday(field, s string) (models.Date, error) {
	if s == "" {
		return a.journal.Today(), nil
	}
	return services.ParseEntryDate(field, s)
}

func printSubmit(w io.Writer, res *services.SubmitResult) error {
	verb := "Saved"
	if res.IsUpdate {
		verb = "Updated"
	}
	fmt.Fprintf(w, "%s entry for %s\n", verb, res.Entry.Date)
	fmt.Fprintf(w, "+%d XP  (total %d, level %d, streak %d)\n",
		res.XPGained, res.NewXP, res.NewLevel, res.NewStreak)
	if res.LeveledUp {
		fmt.Fprintf(w, "Level up! %d -> %d\n", res.PreviousLevel, res.NewLevel)
	}
	for _, id := range res.Unlocked {
		fmt.Fprintf(w, "Achievement unlocked: %s\n", id)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}
