package database

import "github.com/jmoiron/sqlx"

// Schema is the full logical state of the engine. Kept portable between
// SQLite and Postgres: TEXT uuids, no serial columns, no generated columns.
const Schema = `
CREATE TABLE IF NOT EXISTS warehouses (
	id            TEXT PRIMARY KEY,
	company_id    TEXT NOT NULL,
	zone_id       TEXT NOT NULL,
	country_code  TEXT NOT NULL DEFAULT 'US',
	name          TEXT NOT NULL,
	tier          INTEGER NOT NULL DEFAULT 1,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory_items (
	id             TEXT PRIMARY KEY,
	warehouse_id   TEXT NOT NULL,
	product_id     TEXT NOT NULL,
	qty_on_hand    INTEGER NOT NULL DEFAULT 0,
	qty_reserved   INTEGER NOT NULL DEFAULT 0,
	avg_unit_cost  REAL NOT NULL DEFAULT 0,
	last_unit_cost REAL NOT NULL DEFAULT 0,
	updated_at     TIMESTAMP NOT NULL,
	UNIQUE (warehouse_id, product_id)
);

CREATE TABLE IF NOT EXISTS inventory_movements (
	id           TEXT PRIMARY KEY,
	warehouse_id TEXT NOT NULL,
	product_id   TEXT NOT NULL,
	direction    TEXT NOT NULL,
	source_type  TEXT NOT NULL,
	source_ref   TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	unit_cost    REAL NOT NULL DEFAULT 0,
	day_key      TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL,
	UNIQUE (source_type, source_ref)
);

CREATE TABLE IF NOT EXISTS categories (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	name      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id              TEXT PRIMARY KEY,
	category_id     TEXT NOT NULL,
	name            TEXT NOT NULL,
	quality         TEXT NOT NULL DEFAULT 'standard',
	suggested_price REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS listings (
	id               TEXT PRIMARY KEY,
	company_id       TEXT NOT NULL,
	warehouse_id     TEXT NOT NULL,
	zone_id          TEXT NOT NULL,
	product_id       TEXT NOT NULL,
	category_id      TEXT NOT NULL,
	quality          TEXT NOT NULL,
	sale_price       REAL NOT NULL,
	is_active        INTEGER NOT NULL DEFAULT 1,
	tier_used        INTEGER NOT NULL,
	base_min_daily   INTEGER NOT NULL,
	base_max_daily   INTEGER NOT NULL,
	base_qty         INTEGER NOT NULL,
	band_matched     INTEGER NOT NULL DEFAULT 1,
	normal_price     REAL NOT NULL,
	price_index      REAL NOT NULL,
	price_multiplier REAL NOT NULL,
	blocked_by_price INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_sales (
	id               TEXT PRIMARY KEY,
	listing_id       TEXT NOT NULL,
	warehouse_id     TEXT NOT NULL,
	product_id       TEXT NOT NULL,
	day_key          TEXT NOT NULL,
	qty_ordered      INTEGER NOT NULL DEFAULT 0,
	qty_shipped      INTEGER NOT NULL DEFAULT 0,
	price_index      REAL NOT NULL DEFAULT 1,
	season_score     REAL NOT NULL DEFAULT 1,
	price_multiplier REAL NOT NULL DEFAULT 1,
	final_desired    INTEGER NOT NULL DEFAULT 0,
	blocked_by_price  INTEGER NOT NULL DEFAULT 0,
	blocked_by_season INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL,
	UNIQUE (listing_id, day_key)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id              TEXT PRIMARY KEY,
	idempotency_key TEXT NOT NULL UNIQUE,
	company_id      TEXT NOT NULL,
	day_key         TEXT NOT NULL,
	direction       TEXT NOT NULL,
	amount_usd      REAL NOT NULL,
	category        TEXT NOT NULL,
	scope           TEXT NOT NULL DEFAULT '',
	counterparty    TEXT NOT NULL DEFAULT '',
	note            TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id              TEXT PRIMARY KEY,
	idempotency_key TEXT NOT NULL UNIQUE,
	company_id      TEXT NOT NULL,
	currency        TEXT NOT NULL,
	delta           REAL NOT NULL,
	reason          TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS wallet_balances (
	company_id TEXT NOT NULL,
	currency   TEXT NOT NULL,
	balance    REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (company_id, currency)
);

CREATE TABLE IF NOT EXISTS settlements (
	id           TEXT PRIMARY KEY,
	company_id   TEXT NOT NULL,
	warehouse_id TEXT NOT NULL,
	day_key      TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS settlement_lines (
	id            TEXT PRIMARY KEY,
	settlement_id TEXT NOT NULL,
	product_id    TEXT NOT NULL,
	product_name  TEXT NOT NULL DEFAULT '',
	return_qty    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS demand_bands (
	id          TEXT PRIMARY KEY,
	category_id TEXT NOT NULL,
	quality     TEXT NOT NULL,
	tier        INTEGER NOT NULL,
	min_daily   INTEGER NOT NULL,
	max_daily   INTEGER NOT NULL,
	UNIQUE (category_id, quality, tier)
);

CREATE TABLE IF NOT EXISTS price_multiplier_steps (
	max_index  REAL PRIMARY KEY,
	multiplier REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS season_factors (
	category_id TEXT NOT NULL,
	month       INTEGER NOT NULL,
	score       REAL NOT NULL,
	PRIMARY KEY (category_id, month)
);

CREATE TABLE IF NOT EXISTS warehouse_metrics (
	warehouse_id          TEXT PRIMARY KEY,
	stock_restocked_total INTEGER NOT NULL DEFAULT 0,
	units_sold_total      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS player_notifications (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL,
	dedupe_key TEXT NOT NULL UNIQUE,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS country_salary_multipliers (
	country_code TEXT PRIMARY KEY,
	multiplier   REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_daily_sales_wh_day ON daily_sales(warehouse_id, day_key);
CREATE INDEX IF NOT EXISTS idx_movements_wh ON inventory_movements(warehouse_id, product_id);
CREATE INDEX IF NOT EXISTS idx_listings_wh ON listings(warehouse_id, is_active);
CREATE INDEX IF NOT EXISTS idx_ledger_company ON ledger_entries(company_id, day_key);
`

func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(Schema)
	return err
}
