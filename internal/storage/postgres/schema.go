package postgres

// Schema creates the profile and performance tables (idempotent).
const Schema = `
CREATE TABLE IF NOT EXISTS agent_profiles (
	user_id          TEXT PRIMARY KEY,
	memory_strength  INTEGER NOT NULL CHECK (memory_strength BETWEEN 1 AND 100),
	current_persona  TEXT NOT NULL,
	last_interaction TIMESTAMPTZ NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS performance_records (
	id                      BIGSERIAL PRIMARY KEY,
	user_id                 TEXT NOT NULL,
	game_id                 TEXT NOT NULL,
	difficulty              TEXT NOT NULL CHECK (difficulty IN ('easy', 'medium', 'hard')),
	completion_time_seconds DOUBLE PRECISION NOT NULL,
	moves                   INTEGER NOT NULL,
	success                 BOOLEAN NOT NULL,
	recorded_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_performance_user_recorded
	ON performance_records(user_id, recorded_at, id);
`
