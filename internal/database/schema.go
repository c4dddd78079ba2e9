package database

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	max_new_cards INTEGER NOT NULL DEFAULT 10,
	cards_per_session INTEGER NOT NULL DEFAULT 50,
	notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	notification_hour INTEGER NOT NULL DEFAULT 9,
	telegram_chat_id BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	deck TEXT NOT NULL DEFAULT '',
	front TEXT NOT NULL,
	back TEXT NOT NULL,
	state INTEGER NOT NULL DEFAULT 0,
	interval_days DOUBLE PRECISION NOT NULL DEFAULT 0,
	ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
	repetitions INTEGER NOT NULL DEFAULT 0,
	times_reviewed INTEGER NOT NULL DEFAULT 0,
	next_review_at TIMESTAMPTZ NOT NULL,
	last_reviewed_at TIMESTAMPTZ,
	version BIGINT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cards_due ON cards (user_id, next_review_at);

CREATE TABLE IF NOT EXISTS review_events (
	id BIGSERIAL PRIMARY KEY,
	card_id TEXT NOT NULL REFERENCES cards(id),
	session_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	elapsed_ms BIGINT NOT NULL,
	previous_state INTEGER NOT NULL,
	new_state INTEGER NOT NULL,
	reviewed_at TIMESTAMPTZ NOT NULL
);
`

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL DEFAULT '',
	max_new_cards INTEGER NOT NULL DEFAULT 10,
	cards_per_session INTEGER NOT NULL DEFAULT 50,
	notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
	notification_hour INTEGER NOT NULL DEFAULT 9,
	telegram_chat_id INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	deck TEXT NOT NULL DEFAULT '',
	front TEXT NOT NULL,
	back TEXT NOT NULL,
	state INTEGER NOT NULL DEFAULT 0,
	interval_days REAL NOT NULL DEFAULT 0,
	ease_factor REAL NOT NULL DEFAULT 2.5,
	repetitions INTEGER NOT NULL DEFAULT 0,
	times_reviewed INTEGER NOT NULL DEFAULT 0,
	next_review_at TIMESTAMP NOT NULL,
	last_reviewed_at TIMESTAMP,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_cards_due ON cards (user_id, next_review_at);

CREATE TABLE IF NOT EXISTS review_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id TEXT NOT NULL REFERENCES cards(id),
	session_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	previous_state INTEGER NOT NULL,
	new_state INTEGER NOT NULL,
	reviewed_at TIMESTAMP NOT NULL
);
`
