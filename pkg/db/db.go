package db

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS sources (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location TEXT NOT NULL UNIQUE,
	title TEXT,
	site_name TEXT,
	lang TEXT,
	scanned_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES sources(id),
	position INTEGER NOT NULL,
	anchor TEXT NOT NULL,
	html TEXT NOT NULL,
	text TEXT,
	tags TEXT,
	UNIQUE(source_id, position)
);

CREATE TABLE IF NOT EXISTS fragments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL REFERENCES items(id),
	position INTEGER NOT NULL,
	lang TEXT NOT NULL,
	html TEXT NOT NULL,
	text TEXT,
	disambiguation TEXT
);

CREATE TABLE IF NOT EXISTS examples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id INTEGER NOT NULL REFERENCES items(id),
	position INTEGER NOT NULL,
	example_id TEXT NOT NULL,
	html TEXT NOT NULL,
	text TEXT
);

CREATE INDEX IF NOT EXISTS idx_items_source ON items(source_id);
CREATE INDEX IF NOT EXISTS idx_fragments_item ON fragments(item_id);
CREATE INDEX IF NOT EXISTS idx_examples_item ON examples(item_id)
`

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}
