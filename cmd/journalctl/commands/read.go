package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smartjournal/internal/models"
)

const previewLen = 60

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <YYYY-MM-DD>",
		Short: "Print one day's entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			day, err := a.dayOrToday("date", args[0])
			if err != nil {
				return err
			}
			entry, err := a.journal.GetEntry(a.ctx(cmd), email, day)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.format == "json" {
				return writeJSON(out, entry)
			}
			fmt.Fprintf(out, "%s  mood: %s", entry.Date, entry.Mood)
			if entry.Weather != "" {
				fmt.Fprintf(out, "  weather: %s", entry.Weather)
			}
			fmt.Fprintf(out, "\n\n%s\n", entry.Content)
			return nil
		},
	}
}

func newRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			entries, err := a.journal.ListRecent(a.ctx(cmd), email, limit)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries")
	return cmd
}

func newWeekCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show this week's entries and mood tally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			day, err := a.dayOrToday("date", date)
			if err != nil {
				return err
			}
			report, err := a.journal.WeeklyReport(a.ctx(cmd), email, day)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.format == "json" {
				return writeJSON(out, report)
			}
			fmt.Fprintf(out, "Week %s .. %s (starts %s)\n", report.Start, report.End, report.WeekStartDay)
			if err := printEntries(out, report.Entries); err != nil {
				return err
			}
			moods := make([]string, 0, len(report.MoodCounts))
			for mood := range report.MoodCounts {
				moods = append(moods, mood)
			}
			sort.Strings(moods)
			for _, mood := range moods {
				fmt.Fprintf(out, "%s: %d\n", mood, report.MoodCounts[mood])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "treat this day as today, YYYY-MM-DD")
	return cmd
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show XP, level and streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			p, err := a.journal.Progress(a.ctx(cmd), email)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.format == "json" {
				return writeJSON(out, p)
			}
			last := "never"
			if !p.LastEntryDate.IsZero() {
				last = p.LastEntryDate.String()
			}
			fmt.Fprintf(out, "Level %d  %d XP (%d/%d to level %d)\n",
				p.CurrentLevel, p.TotalXP, p.XPIntoLevel, p.XPPerLevel, p.CurrentLevel+1)
			fmt.Fprintf(out, "Streak %d  last entry %s\n", p.CurrentStreak, last)
			return nil
		},
	}
}

func newAchievementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which are unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			list, err := a.journal.ListAchievements(a.ctx(cmd), email)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, ach := range list {
				state := "locked"
				if ach.Unlocked && ach.UnlockedAt != nil {
					state = "unlocked " + ach.UnlockedAt.Format("2006-01-02")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ach.Icon, ach.Title, ach.Description, state)
			}
			return tw.Flush()
		},
	}
}

func newQuestsCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "Show the daily quests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := a.requireUser()
			if err != nil {
				return err
			}
			day, err := a.dayOrToday("date", date)
			if err != nil {
				return err
			}
			quests, err := a.journal.DailyQuests(a.ctx(cmd), email, day)
			if err != nil {
				return err
			}
			if a.format == "json" {
				return writeJSON(cmd.OutOrStdout(), quests)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, q := range quests {
				mark := "[ ]"
				if q.Completed {
					mark = "[x]"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d/%d\t+%d XP\n", mark, q.Description, q.Progress, q.Target, q.XPReward)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day, YYYY-MM-DD (default today)")
	return cmd
}

func printEntries(w io.Writer, entries []models.JournalEntry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no entries")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Date, e.Mood, preview(e.Content))
	}
	return tw.Flush()
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	r := []rune(content)
	if len(r) <= previewLen {
		return content
	}
	return string(r[:previewLen-3]) + "..."
}
