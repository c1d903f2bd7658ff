package repository

import (
	"database/sql"
	"time"

	domrepo "FinPanel/internal/domain/repository"
)

// SQLitePanelStore keeps panel builds in an embedded SQLite file.
type SQLitePanelStore struct {
	sqlPanelStore
}

func NewSQLitePanelStore(db *sql.DB) *SQLitePanelStore {
	return &SQLitePanelStore{sqlPanelStore{
		db:      db,
		backend: "sqlite",
		builds:  "panel_builds",
		values:  "panel_values",
		schema:  sqliteSchema,
		encode:  func(t time.Time) any { return t.UnixMilli() },
		withTx:  true,
	}}
}

func (s *SQLitePanelStore) Close() error {
	return s.db.Close()
}

// Timestamps are unix milliseconds.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS panel_builds (
		build_id TEXT PRIMARY KEY,
		panel TEXT NOT NULL,
		built_at INTEGER NOT NULL,
		n_rows INTEGER NOT NULL,
		columns TEXT NOT NULL,
		warnings TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_panel_builds_panel ON panel_builds (panel, built_at)`,
	`CREATE TABLE IF NOT EXISTS panel_values (
		build_id TEXT NOT NULL,
		panel TEXT NOT NULL,
		ts INTEGER NOT NULL,
		col_id TEXT NOT NULL,
		value REAL,
		PRIMARY KEY (build_id, ts, col_id)
	)`,
}

var _ domrepo.PanelStore = (*SQLitePanelStore)(nil)
