package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartjournal/internal/services"
)

// run executes one journalctl invocation against dbPath.
func run(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--db-driver", "sqlite3",
		"--db-dsn", dbPath,
		"--user", "s100201@student.fop",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "journalctl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"user", "db-driver", "db-dsn", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{
		"migrate", "submit", "show", "recent", "week", "progress", "achievements", "quests",
	}, names)
}

func TestSubmitAndInspect(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	out, err := run(t, dbPath, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema ready")

	out, err = run(t, dbPath, "", "submit", "--date", "2026-10-13", "--mood", "POSITIVE", strings.Repeat("a", 60))
	require.NoError(t, err, out)
	assert.Contains(t, out, "+110 XP")
	assert.Contains(t, out, "Achievement unlocked: first_entry")

	out, err = run(t, dbPath, strings.Repeat("b", 400)+"\n", "--format", "json", "submit", "--date", "2026-10-14", "-")
	require.NoError(t, err, out)
	var res services.SubmitResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 560, res.NewXP)
	assert.Equal(t, 2, res.NewLevel)
	assert.True(t, res.LeveledUp)

	out, err = run(t, dbPath, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Level 2  560 XP (60/500 to level 3)")
	assert.Contains(t, out, "Streak 2  last entry 2026-10-14")

	out, err = run(t, dbPath, "", "show", "2026-10-13")
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat("a", 60))

	out, err = run(t, dbPath, "", "recent", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "2026-10-14")
	assert.NotContains(t, out, "2026-10-13")

	out, err = run(t, dbPath, "", "week", "--date", "2026-10-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 2026-10-11 .. 2026-10-14")
	assert.Contains(t, out, "POSITIVE: 1")

	out, err = run(t, dbPath, "", "quests", "--date", "2026-10-14")
	require.NoError(t, err)
	assert.Contains(t, out, "[x]  Write a journal entry")

	out, err = run(t, dbPath, "", "achievements")
	require.NoError(t, err)
	assert.Contains(t, out, "First Steps")
}

func TestSubmitErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "journal.db")
	_, err := run(t, dbPath, "", "migrate")
	require.NoError(t, err)

	_, err = run(t, dbPath, "   ", "submit", "--date", "2026-10-14")
	assert.True(t, services.IsValidationError(err))

	_, err = run(t, dbPath, "", "submit", "--date", "tomorrow", "text")
	assert.True(t, services.IsValidationError(err))

	_, err = run(t, dbPath, "", "show", "2026-10-14")
	assert.Error(t, err)

	_, err = run(t, dbPath, "", "--format", "yaml", "progress")
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n text"))
	long := preview(strings.Repeat("é", 100))
	assert.Len(t, []rune(long), previewLen)
	assert.True(t, strings.HasSuffix(long, "..."))
}
