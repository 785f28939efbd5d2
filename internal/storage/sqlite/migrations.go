package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run once on startup; request handlers never probe or alter structure.
const schema = `
CREATE TABLE IF NOT EXISTS rooms (
    code TEXT PRIMARY KEY,
    creator_id TEXT NOT NULL,
    locked INTEGER NOT NULL DEFAULT 0,
    invite_only INTEGER NOT NULL DEFAULT 0,
    invite_code TEXT NOT NULL,
    max_members INTEGER NOT NULL DEFAULT 50,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    room_code TEXT NOT NULL,
    user_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    normalized_name TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    last_seen_at INTEGER NOT NULL,
    PRIMARY KEY (room_code, user_id),
    FOREIGN KEY (room_code) REFERENCES rooms(code) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_members_room_name ON members(room_code, normalized_name);

CREATE TABLE IF NOT EXISTS entries (
    id TEXT PRIMARY KEY,
    room_code TEXT NOT NULL,
    user_id TEXT NOT NULL,
    display_name TEXT NOT NULL,
    delta INTEGER NOT NULL,
    label TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (room_code) REFERENCES rooms(code) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entries_room_created ON entries(room_code, created_at);
CREATE INDEX IF NOT EXISTS idx_entries_member_created ON entries(room_code, user_id, created_at);

CREATE TABLE IF NOT EXISTS weekly_focus (
    room_code TEXT NOT NULL,
    user_id TEXT NOT NULL,
    week_key TEXT NOT NULL,
    areas TEXT NOT NULL,
    locked INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (room_code, user_id, week_key),
    FOREIGN KEY (room_code) REFERENCES rooms(code) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    event_type TEXT NOT NULL,
    room_code TEXT NOT NULL DEFAULT '',
    user_id TEXT NOT NULL DEFAULT '',
    payload TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_room_created ON events(room_code, created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
