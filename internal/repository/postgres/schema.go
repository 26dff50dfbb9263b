package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the full DDL for the reservation backend. The exclusion
// constraint on reservations is the storage-level second line of defense
// against double booking: even if two overlapping creates pass the
// application-level availability check concurrently, at most one insert
// commits and the loser receives a conflict error.
const Schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS users (
    id                 SERIAL PRIMARY KEY,
    email              TEXT NOT NULL UNIQUE,
    name               TEXT NOT NULL,
    role               TEXT NOT NULL DEFAULT 'MEMBER',
    credit_balance     INTEGER NOT NULL DEFAULT 0,
    active             BOOLEAN NOT NULL DEFAULT TRUE,
    notification_prefs JSONB,
    last_login_at      TIMESTAMPTZ,
    created_on         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_on         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sections (
    id                    SERIAL PRIMARY KEY,
    name                  TEXT NOT NULL,
    description           TEXT NOT NULL DEFAULT '',
    parent_id             INTEGER REFERENCES sections(id),
    allowed_days_out      INTEGER[] NOT NULL DEFAULT '{}',
    allowed_days_in       INTEGER[] NOT NULL DEFAULT '{}',
    refund_deadline_hours INTEGER NOT NULL DEFAULT 48,
    is_system             BOOLEAN NOT NULL DEFAULT FALSE,
    created_on            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_on            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS section_closures (
    id         SERIAL PRIMARY KEY,
    section_id INTEGER NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
    start_date DATE NOT NULL,
    end_date   DATE NOT NULL,
    reason     TEXT NOT NULL DEFAULT '',
    created_on TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (start_date <= end_date)
);

CREATE TABLE IF NOT EXISTS products (
    id               SERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    reference        TEXT NOT NULL UNIQUE,
    description      TEXT NOT NULL DEFAULT '',
    section_id       INTEGER NOT NULL REFERENCES sections(id),
    subsection_id    INTEGER REFERENCES sections(id),
    price_per_period INTEGER NOT NULL,
    credit_period    TEXT NOT NULL DEFAULT 'DAY',
    min_duration     INTEGER NOT NULL DEFAULT 1,
    max_duration     INTEGER NOT NULL DEFAULT 0,
    status           TEXT NOT NULL DEFAULT 'AVAILABLE',
    last_condition   TEXT NOT NULL DEFAULT 'OK',
    last_movement_at TIMESTAMPTZ,
    created_on       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_on       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reservations (
    id                   SERIAL PRIMARY KEY,
    user_id              INTEGER NOT NULL REFERENCES users(id),
    product_id           INTEGER NOT NULL REFERENCES products(id),
    start_date           DATE NOT NULL,
    end_date             DATE NOT NULL,
    status               TEXT NOT NULL DEFAULT 'CONFIRMED',
    credits_charged      INTEGER NOT NULL DEFAULT 0,
    extension_count      INTEGER NOT NULL DEFAULT 0,
    total_extension_cost INTEGER NOT NULL DEFAULT 0,
    refunded             BOOLEAN NOT NULL DEFAULT FALSE,
    refunded_amount      INTEGER NOT NULL DEFAULT 0,
    notes                TEXT NOT NULL DEFAULT '',
    admin_notes          TEXT NOT NULL DEFAULT '',
    created_on           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_on           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (start_date <= end_date),
    CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
        product_id WITH =,
        daterange(start_date, end_date, '[]') WITH &&
    ) WHERE (status IN ('CONFIRMED', 'CHECKED_OUT'))
);

CREATE INDEX IF NOT EXISTS idx_reservations_product_dates
    ON reservations (product_id, start_date, end_date);
CREATE INDEX IF NOT EXISTS idx_reservations_user
    ON reservations (user_id, status);

CREATE TABLE IF NOT EXISTS product_movements (
    id             SERIAL PRIMARY KEY,
    product_id     INTEGER NOT NULL REFERENCES products(id),
    reservation_id INTEGER REFERENCES reservations(id),
    type           TEXT NOT NULL,
    condition      TEXT NOT NULL DEFAULT 'OK',
    notes          TEXT NOT NULL DEFAULT '',
    performed_by   INTEGER NOT NULL REFERENCES users(id),
    performed_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS movement_photos (
    id          SERIAL PRIMARY KEY,
    movement_id INTEGER NOT NULL REFERENCES product_movements(id) ON DELETE CASCADE,
    key         TEXT NOT NULL,
    filename    TEXT NOT NULL,
    mime_type   TEXT NOT NULL,
    size        BIGINT NOT NULL DEFAULT 0,
    sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS credit_transactions (
    id            SERIAL PRIMARY KEY,
    user_id       INTEGER NOT NULL REFERENCES users(id),
    amount        INTEGER NOT NULL,
    balance_after INTEGER NOT NULL,
    type          TEXT NOT NULL,
    reason        TEXT NOT NULL DEFAULT '',
    performed_by  INTEGER NOT NULL,
    metadata      JSONB,
    created_on    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credit_transactions_user
    ON credit_transactions (user_id, created_on DESC);

CREATE TABLE IF NOT EXISTS notifications (
    id         SERIAL PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    type       TEXT NOT NULL,
    title      TEXT NOT NULL,
    message    TEXT NOT NULL,
    is_read    BOOLEAN NOT NULL DEFAULT FALSE,
    attributes JSONB,
    created_on TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_log (
    id           SERIAL PRIMARY KEY,
    performed_by INTEGER NOT NULL,
    action       TEXT NOT NULL,
    target_type  TEXT NOT NULL,
    target_id    INTEGER NOT NULL,
    metadata     JSONB,
    created_on   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

INSERT INTO sections (name, description, is_system)
SELECT 'Unassigned', 'Default section for products without a home', TRUE
WHERE NOT EXISTS (SELECT 1 FROM sections WHERE is_system);
`

// EnsureSchema creates all tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
