package infra

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// schemaStatements create the ledger tables and the partial unique indexes
// that back the one-open-campaign-per-owner and unique-open-location rules.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id uuid PRIMARY KEY,
		owner_id uuid NOT NULL,
		title text NOT NULL,
		description text NOT NULL DEFAULT '',
		location text NOT NULL,
		target_amount bigint NOT NULL,
		current_amount bigint NOT NULL DEFAULT 0 CHECK (current_amount >= 0),
		status text NOT NULL DEFAULT 'OPEN',
		payout_token text NOT NULL,
		expires_at timestamptz NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS campaigns_open_owner_idx
		ON campaigns (owner_id) WHERE status = 'OPEN'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS campaigns_open_location_idx
		ON campaigns (location) WHERE status = 'OPEN'`,
	`CREATE TABLE IF NOT EXISTS donations (
		id uuid PRIMARY KEY,
		campaign_id uuid NOT NULL REFERENCES campaigns (id),
		donor_id uuid NOT NULL,
		amount bigint NOT NULL CHECK (amount > 0),
		charge_id text NOT NULL,
		donor_country text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS donations_campaign_idx ON donations (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id uuid PRIMARY KEY,
		donation_id uuid NOT NULL UNIQUE REFERENCES donations (id),
		campaign_id uuid NOT NULL REFERENCES campaigns (id),
		author_id uuid NOT NULL,
		body text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reconciliations (
		id uuid PRIMARY KEY,
		campaign_id uuid NOT NULL,
		donor_id uuid NOT NULL,
		amount bigint NOT NULL,
		charge_id text NOT NULL,
		reason text NOT NULL,
		resolved boolean NOT NULL DEFAULT false,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS analytics_daily (
		day date PRIMARY KEY,
		donations bigint NOT NULL DEFAULT 0,
		donated_amount bigint NOT NULL DEFAULT 0,
		campaigns_created bigint NOT NULL DEFAULT 0
	)`,
}

// EnsureSchema creates missing tables and indexes. It runs over a plain
// database/sql connection at startup and is idempotent.
func EnsureSchema(databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
