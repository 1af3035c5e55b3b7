// Package sqlite implementa los puertos de persistencia sobre SQLite para
// despliegues de oficina de terreno sin servidor de base de datos (y para
// pruebas con ":memory:"). La semántica es la misma que el backend PostgreSQL;
// el bloqueo de fila se reemplaza por transacciones BEGIN IMMEDIATE, que
// serializan a los escritores a nivel de base.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_items (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	name_search      TEXT NOT NULL,
	category_id      TEXT REFERENCES categories(id),
	unit             TEXT NOT NULL,
	reorder_level    TEXT NOT NULL DEFAULT '0',
	current_quantity TEXT NOT NULL DEFAULT '0',
	unit_cost        TEXT NOT NULL DEFAULT '0',
	currency         TEXT NOT NULL DEFAULT 'USD',
	location_id      TEXT REFERENCES locations(id),
	deleted_at       DATETIME,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_items_name ON stock_items(name);

CREATE TABLE IF NOT EXISTS stock_movements (
	id             TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL,
	item_id        TEXT NOT NULL REFERENCES stock_items(id),
	type           TEXT NOT NULL,
	quantity       TEXT NOT NULL,
	unit_cost      TEXT NOT NULL DEFAULT '0',
	currency       TEXT NOT NULL DEFAULT 'USD',
	reason_id      TEXT,
	reference      TEXT NOT NULL DEFAULT '',
	location_id    TEXT,
	project_id     TEXT,
	beneficiary_id TEXT,
	performed_by   TEXT,
	movement_date  DATETIME NOT NULL,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_item_date ON stock_movements(item_id, movement_date, created_at);
`

// Open abre (o crea) la base SQLite, aplica los PRAGMA de integridad y el
// esquema. Las cantidades se guardan como TEXT y se recomponen con
// shopspring/decimal para no perder precisión en aritmética binaria.
func Open(path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_fk=1&_busy_timeout=5000&_txlock=immediate", path)
	if path == ":memory:" {
		// Cada conexión nueva vería una base vacía; compartir una sola.
		dsn = "file::memory:?mode=memory&cache=shared&_fk=1&_busy_timeout=5000&_txlock=immediate"
	}
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("aplicar esquema: %w", err)
	}
	return db, nil
}
