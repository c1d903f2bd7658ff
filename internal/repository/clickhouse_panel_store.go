package repository

import (
	"time"

	domrepo "FinPanel/internal/domain/repository"
	pkgch "FinPanel/pkg/clickhouse"
)

// CHPanelStore keeps panel builds in ClickHouse.
type CHPanelStore struct {
	sqlPanelStore
}

func NewCHPanelStore(ch *pkgch.Client) *CHPanelStore {
	db := ch.Database()
	return &CHPanelStore{sqlPanelStore{
		db:      ch.DB(),
		backend: "clickhouse",
		builds:  db + ".panel_builds",
		values:  db + ".panel_values",
		schema:  clickhouseSchema(db),
		encode:  func(t time.Time) any { return t.UTC() },
	}}
}

// Close leaves the pool to its owner.
func (s *CHPanelStore) Close() error { return nil }

func clickhouseSchema(db string) []string {
	return []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		`CREATE TABLE IF NOT EXISTS ` + db + `.panel_builds (
			build_id String,
			panel LowCardinality(String),
			built_at DateTime64(3, 'UTC'),
			n_rows UInt32,
			columns String,
			warnings String
		) ENGINE = MergeTree ORDER BY (panel, built_at)`,
		`CREATE TABLE IF NOT EXISTS ` + db + `.panel_values (
			build_id String,
			panel LowCardinality(String),
			ts DateTime64(3, 'UTC'),
			col_id LowCardinality(String),
			value Nullable(Float64)
		) ENGINE = MergeTree PARTITION BY panel ORDER BY (panel, build_id, ts, col_id)`,
	}
}

var _ domrepo.PanelStore = (*CHPanelStore)(nil)
