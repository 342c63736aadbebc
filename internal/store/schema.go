package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            BIGSERIAL PRIMARY KEY,
	job_id        BIGINT NOT NULL DEFAULT 0,
	site_number   BIGINT NOT NULL DEFAULT 0,
	logtitle      TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	process       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	phase         TEXT NOT NULL DEFAULT '',
	jobsite       TEXT NOT NULL DEFAULT '',
	county        TEXT NOT NULL DEFAULT '',
	sector        TEXT NOT NULL DEFAULT '',
	site          TEXT NOT NULL DEFAULT '',
	permit        TEXT NOT NULL DEFAULT '',
	parcel        TEXT NOT NULL DEFAULT '',
	model_code    TEXT NOT NULL DEFAULT '',
	added_by      TEXT NOT NULL DEFAULT '',
	service_date  TEXT NOT NULL DEFAULT '',
	date_created  TIMESTAMPTZ NOT NULL,
	fingerprint   TEXT NOT NULL,
	synced_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_events_job_id ON events (job_id);
CREATE INDEX IF NOT EXISTS idx_events_status ON events (status);
CREATE INDEX IF NOT EXISTS idx_events_fingerprint ON events (fingerprint);
CREATE INDEX IF NOT EXISTS idx_events_date_created ON events (date_created);

CREATE TABLE IF NOT EXISTS rule_annotations (
	id            BIGSERIAL PRIMARY KEY,
	job_id        BIGINT NOT NULL DEFAULT 0,
	process       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT '',
	phase         TEXT NOT NULL DEFAULT '',
	failure_group TEXT NOT NULL DEFAULT '',
	failure_item  TEXT NOT NULL DEFAULT '',
	logtitle      TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	added_by      TEXT NOT NULL DEFAULT '',
	jobsite       TEXT NOT NULL DEFAULT '',
	county        TEXT NOT NULL DEFAULT '',
	sector        TEXT NOT NULL DEFAULT '',
	not_report    BOOLEAN NOT NULL DEFAULT FALSE,
	date_created  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rule_annotations_pair ON rule_annotations (process, status);
CREATE INDEX IF NOT EXISTS idx_rule_annotations_job ON rule_annotations (job_id, process);

CREATE TABLE IF NOT EXISTS sync_audit (
	id             BIGSERIAL PRIMARY KEY,
	table_name     TEXT NOT NULL,
	records_synced INT NOT NULL DEFAULT 0,
	records_added  INT NOT NULL DEFAULT 0,
	synced_at      TIMESTAMPTZ NOT NULL,
	duration_ms    BIGINT NOT NULL DEFAULT 0,
	error_message  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sync_audit_table ON sync_audit (table_name, synced_at DESC);

CREATE TABLE IF NOT EXISTS subscriptions (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL UNIQUE,
	endpoint_url      TEXT NOT NULL,
	process           TEXT NOT NULL,
	status            TEXT NOT NULL,
	active            BOOLEAN NOT NULL DEFAULT TRUE,
	test_mode         BOOLEAN NOT NULL DEFAULT FALSE,
	last_triggered_at TIMESTAMPTZ,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_trigger ON subscriptions (process, status) WHERE active;

CREATE TABLE IF NOT EXISTS dispatch_audit (
	id              BIGSERIAL PRIMARY KEY,
	subscription_id TEXT NOT NULL REFERENCES subscriptions(id),
	record_ids      BIGINT[] NOT NULL DEFAULT '{}',
	records_count   INT NOT NULL DEFAULT 0,
	success         BOOLEAN NOT NULL,
	response_code   INT NOT NULL DEFAULT 0,
	error_message   TEXT NOT NULL DEFAULT '',
	triggered_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatch_audit_sub ON dispatch_audit (subscription_id, triggered_at DESC);
`

// EnsureSchema creates the local tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
