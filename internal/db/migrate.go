package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    week_start_day TEXT NOT NULL DEFAULT 'SUNDAY',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS journals (
    user_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
    entry_date DATE NOT NULL,
    content TEXT NOT NULL,
    weather TEXT NOT NULL DEFAULT '',
    mood TEXT NOT NULL DEFAULT 'Unknown',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_email, entry_date)
);

CREATE TABLE IF NOT EXISTS user_progress (
    user_email TEXT PRIMARY KEY REFERENCES users(email) ON DELETE CASCADE,
    current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
    total_xp INTEGER NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
    current_level INTEGER NOT NULL DEFAULT 1 CHECK (current_level >= 1),
    last_journal_date DATE
);

CREATE TABLE IF NOT EXISTS achievement_definitions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_achievements (
    user_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
    achievement_id TEXT NOT NULL REFERENCES achievement_definitions(id) ON DELETE CASCADE,
    unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_email, achievement_id)
);
`

// SQLite has no TIMESTAMPTZ; declaring TIMESTAMP/DATE lets the driver hand
// back time.Time values.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    email TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    week_start_day TEXT NOT NULL DEFAULT 'SUNDAY',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS journals (
    user_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
    entry_date DATE NOT NULL,
    content TEXT NOT NULL,
    weather TEXT NOT NULL DEFAULT '',
    mood TEXT NOT NULL DEFAULT 'Unknown',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_email, entry_date)
);

CREATE TABLE IF NOT EXISTS user_progress (
    user_email TEXT PRIMARY KEY REFERENCES users(email) ON DELETE CASCADE,
    current_streak INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
    total_xp INTEGER NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
    current_level INTEGER NOT NULL DEFAULT 1 CHECK (current_level >= 1),
    last_journal_date DATE
);

CREATE TABLE IF NOT EXISTS achievement_definitions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_achievements (
    user_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
    achievement_id TEXT NOT NULL REFERENCES achievement_definitions(id) ON DELETE CASCADE,
    unlocked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_email, achievement_id)
);
`

// RunMigrations creates the schema. Every statement is idempotent so it runs
// on each start.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	schema, err := schemaFor(db.DriverName())
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if db.DriverName() != DriverPostgres {
		return nil
	}

	// Columns added after the first release.
	alters := `
DO $$ BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='users' AND column_name='week_start_day'
    ) THEN
        ALTER TABLE users ADD COLUMN week_start_day TEXT NOT NULL DEFAULT 'SUNDAY';
    END IF;
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns WHERE table_name='journals' AND column_name='updated_at'
    ) THEN
        ALTER TABLE journals ADD COLUMN updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW();
    END IF;
END $$;`
	if _, err := db.ExecContext(ctx, alters); err != nil {
		return fmt.Errorf("apply column migrations: %w", err)
	}
	return nil
}

func schemaFor(driver string) (string, error) {
	switch driver {
	case DriverPostgres:
		return postgresSchema, nil
	case DriverSQLite:
		return sqliteSchema, nil
	}
	return "", fmt.Errorf("no schema for driver %q", driver)
}
