package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	applogger "FinPanel/pkg/logger"
)

// valuesChunk rows per multi-row INSERT.
const valuesChunk = 2000

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// sqlPanelStore stores panels in long format: one row per cell, plus one
// row per build carrying column order and warnings. Only the timestamp
// encoding and DDL differ between backends.
type sqlPanelStore struct {
	db      *sql.DB
	backend string
	builds  string
	values  string
	schema  []string
	encode  func(time.Time) any
	withTx  bool
	l       *applogger.Logger
}

func (s *sqlPanelStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *sqlPanelStore) Init(ctx context.Context) error {
	for _, stmt := range s.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s init schema: %w", s.backend, err)
		}
	}
	return nil
}

func (s *sqlPanelStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlPanelStore) Save(ctx context.Context, b *models.PanelBuild) error {
	start := time.Now()
	cols, err := json.Marshal(b.Panel.ColumnIDs())
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	warnings := b.Warnings
	if warnings == nil {
		warnings = []models.Warning{}
	}
	warn, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	var ex execer = s.db
	var tx *sql.Tx
	if s.withTx {
		if tx, err = s.db.BeginTx(ctx, nil); err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		ex = tx
	}

	if err := s.insertValues(ctx, ex, b); err != nil {
		s.logError("save values", b.Name, err)
		return fmt.Errorf("save panel %s values: %w", b.Name, err)
	}
	q := fmt.Sprintf("INSERT INTO %s (build_id, panel, built_at, n_rows, columns, warnings) VALUES (?, ?, ?, ?, ?, ?)", s.builds)
	if _, err := ex.ExecContext(ctx, q, b.ID, b.Name, s.encode(b.BuiltAt), b.Panel.Len(), string(cols), string(warn)); err != nil {
		s.logError("save build", b.Name, err)
		return fmt.Errorf("save panel %s: %w", b.Name, err)
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	if s.l != nil {
		s.l.Info("panel saved",
			applogger.String("backend", s.backend),
			applogger.String("panel", b.Name),
			applogger.String("build_id", b.ID),
			applogger.Int("rows", b.Panel.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *sqlPanelStore) insertValues(ctx context.Context, ex execer, b *models.PanelBuild) error {
	p := b.Panel
	type cell struct {
		row, col int
	}
	cells := make([]cell, 0, p.Len()*len(p.Columns))
	for r := range p.Index {
		for c := range p.Columns {
			cells = append(cells, cell{row: r, col: c})
		}
	}

	for start := 0; start < len(cells); start += valuesChunk {
		end := min(start+valuesChunk, len(cells))
		placeholders := make([]string, 0, end-start)
		args := make([]any, 0, (end-start)*5)
		for _, c := range cells[start:end] {
			placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
			args = append(args,
				b.ID,
				b.Name,
				s.encode(p.Index[c.row]),
				p.Columns[c.col].ID,
				p.Columns[c.col].Values[c.row].Ptr(),
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (build_id, panel, ts, col_id, value) VALUES %s", s.values, strings.Join(placeholders, ","))
		if _, err := ex.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlPanelStore) Latest(ctx context.Context, name string) (*models.PanelBuild, error) {
	start := time.Now()
	q := fmt.Sprintf("SELECT build_id, built_at, columns, warnings FROM %s WHERE panel = ? ORDER BY built_at DESC LIMIT 1", s.builds)

	var (
		b              = &models.PanelBuild{Name: name}
		builtAt        any
		colsJSON, warn string
	)
	err := s.db.QueryRowContext(ctx, q, name).Scan(&b.ID, &builtAt, &colsJSON, &warn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domrepo.ErrPanelNotFound, name)
	}
	if err != nil {
		s.logError("latest build", name, err)
		return nil, fmt.Errorf("latest build %s: %w", name, err)
	}
	if b.BuiltAt, err = decodeTime(builtAt); err != nil {
		return nil, err
	}
	var cols []string
	if err := json.Unmarshal([]byte(colsJSON), &cols); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	if err := json.Unmarshal([]byte(warn), &b.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}

	q = fmt.Sprintf("SELECT ts, col_id, value FROM %s WHERE build_id = ?", s.values)
	rows, err := s.db.QueryContext(ctx, q, b.ID)
	if err != nil {
		s.logError("latest values", name, err)
		return nil, fmt.Errorf("load panel %s: %w", name, err)
	}
	defer rows.Close()

	grid := make(map[time.Time]map[string]models.Value)
	for rows.Next() {
		var (
			rawTS any
			col   string
			v     sql.NullFloat64
		)
		if err := rows.Scan(&rawTS, &col, &v); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		ts, err := decodeTime(rawTS)
		if err != nil {
			return nil, err
		}
		k := ts.UTC()
		if grid[k] == nil {
			grid[k] = make(map[string]models.Value, len(cols))
		}
		if v.Valid {
			grid[k][col] = models.Some(v.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	b.Panel = assemble(cols, grid)
	if s.l != nil {
		s.l.Debug("panel loaded",
			applogger.String("backend", s.backend),
			applogger.String("panel", name),
			applogger.Int("rows", b.Panel.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return b, nil
}

func (s *sqlPanelStore) logError(op, panel string, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(s.backend+" "+op+" error",
		applogger.String("panel", panel),
		applogger.Error(err),
	)
}

// assemble rebuilds the wide panel from long-format cells.
// Keys are UTC times without a monotonic reading, so == matches Equal.
func assemble(cols []string, grid map[time.Time]map[string]models.Value) *models.Panel {
	keys := slices.SortedFunc(maps.Keys(grid), time.Time.Compare)

	p := &models.Panel{Index: keys}
	for _, id := range cols {
		vals := make([]models.Value, len(keys))
		for i, k := range keys {
			vals[i] = grid[k][id]
		}
		p.Columns = append(p.Columns, models.Column{ID: id, Values: vals})
	}
	return p
}

func decodeTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}
