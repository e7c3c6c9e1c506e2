package postgres

import (
	"context"
	"fmt"
)

// schema DDL idempotente. Las cantidades son enteros; version es el token de la escritura condicional.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id              TEXT PRIMARY KEY,
		label           TEXT NOT NULL,
		unit_of_measure TEXT NOT NULL DEFAULT '',
		qty_physical    INTEGER NOT NULL CHECK (qty_physical >= 0),
		qty_minimum     INTEGER NOT NULL DEFAULT 0 CHECK (qty_minimum >= 0),
		qty_initial     INTEGER NOT NULL DEFAULT 0,
		location        TEXT NOT NULL DEFAULT '',
		category        TEXT NOT NULL DEFAULT '',
		picture_url     TEXT NOT NULL DEFAULT '',
		version         BIGINT NOT NULL DEFAULT 1,
		seq             BIGSERIAL,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS requests (
		id                   TEXT PRIMARY KEY,
		user_id              TEXT NOT NULL,
		manager_id           TEXT NOT NULL DEFAULT '',
		created              TIMESTAMPTZ NOT NULL,
		status               TEXT NOT NULL,
		lines                JSONB NOT NULL DEFAULT '[]',
		total_qty            INTEGER NOT NULL DEFAULT 0,
		reason               TEXT NOT NULL DEFAULT '',
		manager_comment      TEXT NOT NULL DEFAULT '',
		manager_action_date  TIMESTAMPTZ,
		action_by            TEXT NOT NULL DEFAULT '',
		delivered_at         TIMESTAMPTZ,
		delivered_by         TEXT NOT NULL DEFAULT '',
		delivery_lease_until TIMESTAMPTZ,
		version              BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests (status)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_user ON requests (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_manager ON requests (manager_id)`,
	`CREATE TABLE IF NOT EXISTS stock_movements (
		id            TEXT PRIMARY KEY,
		product_id    TEXT NOT NULL,
		delta         INTEGER NOT NULL,
		applied_delta INTEGER NOT NULL,
		request_id    TEXT,
		line_index    INTEGER,
		user_id       TEXT NOT NULL DEFAULT '',
		date          TIMESTAMPTZ NOT NULL,
		comment       TEXT NOT NULL DEFAULT '',
		seq           BIGSERIAL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_product ON stock_movements (product_id, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_movements_request ON stock_movements (request_id, seq)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id         TEXT PRIMARY KEY,
		type       TEXT NOT NULL,
		user_name  TEXT NOT NULL DEFAULT '',
		message    TEXT NOT NULL,
		entity_id  TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		seq        BIGSERIAL
	)`,
}

// EnsureSchema crea las tablas e índices si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
