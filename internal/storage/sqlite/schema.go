package sqlite

// Schema creates the profile and performance tables. Every statement is
// idempotent so it runs on each open.
const Schema = `
CREATE TABLE IF NOT EXISTS agent_profiles (
	user_id          TEXT PRIMARY KEY,
	memory_strength  INTEGER NOT NULL CHECK (memory_strength BETWEEN 1 AND 100),
	current_persona  TEXT NOT NULL,
	last_interaction TIMESTAMP NOT NULL,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS performance_records (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id                 TEXT NOT NULL,
	game_id                 TEXT NOT NULL,
	difficulty              TEXT NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')),
	completion_time_seconds REAL NOT NULL,
	moves                   INTEGER NOT NULL,
	success                 INTEGER NOT NULL,
	recorded_at             TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_performance_user_recorded
	ON performance_records(user_id, recorded_at, id);
`
