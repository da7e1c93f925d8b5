package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// The CHECK constraints on items mirror model.Item.CheckInvariants so that no
// write path, including direct SQL, can store a claimed item without a
// claimant or a held item that is not found.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'staff', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT,
    category      TEXT,
    location      TEXT,
    date_reported TEXT,
    status        TEXT NOT NULL CHECK (status IN ('lost', 'found', 'claimed')),
    reported_by   INTEGER NOT NULL REFERENCES users(id),
    held_by       INTEGER REFERENCES users(id),
    claimed_by    INTEGER REFERENCES users(id),
    image         BLOB,
    image_mime    TEXT,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((status = 'claimed') = (claimed_by IS NOT NULL)),
    CHECK (held_by IS NULL OR status = 'found')
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
CREATE INDEX IF NOT EXISTS idx_items_reported_by ON items(reported_by);

CREATE TABLE IF NOT EXISTS requests (
    id              INTEGER PRIMARY KEY,
    item_id         INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    requester_id    INTEGER NOT NULL REFERENCES users(id),
    status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'rejected')),
    message         TEXT,
    request_date    DATETIME NOT NULL,
    resolution_date DATETIME,
    resolved_by     INTEGER REFERENCES users(id),
    admin_notes     TEXT NOT NULL DEFAULT '',
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((status = 'pending') = (resolution_date IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_requests_item ON requests(item_id);
CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests(requester_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);

-- One pending claim per user and item.
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_pending_once
    ON requests(item_id, requester_id) WHERE status = 'pending';

-- At most one approved claim per item, ever.
CREATE UNIQUE INDEX IF NOT EXISTS idx_requests_approved_once
    ON requests(item_id) WHERE status = 'approved';

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
