package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/pkg/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLitePanelStore {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "panels.db"))
	require.NoError(t, err)
	s := NewSQLitePanelStore(db)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx), "init is idempotent")
	return s
}

func d(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestSQLitePanelStore_SaveAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	old := &models.PanelBuild{
		ID:      "b1",
		Name:    "fred",
		BuiltAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
		Panel: &models.Panel{
			Index:   []time.Time{d(1)},
			Columns: []models.Column{{ID: "GDP", Values: []models.Value{models.Some(1)}}},
		},
	}
	latest := &models.PanelBuild{
		ID:      "b2",
		Name:    "fred",
		BuiltAt: time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC),
		Panel: &models.Panel{
			Index: []time.Time{d(1), d(2), d(3)},
			Columns: []models.Column{
				{ID: "WALCL", Values: []models.Value{models.Some(7.7), models.Null, models.Some(7.6)}},
				{ID: "Gen_IORB", Values: []models.Value{models.Null, models.Null, models.Some(5.4)}},
			},
		},
		Warnings: []models.Warning{{Kind: models.WarnEmptyColumn, Column: "X", Message: "m"}},
	}
	require.NoError(t, s.Save(ctx, old))
	require.NoError(t, s.Save(ctx, latest))

	got, err := s.Latest(ctx, "fred")
	require.NoError(t, err)

	assert.Equal(t, "b2", got.ID)
	assert.True(t, latest.BuiltAt.Equal(got.BuiltAt))
	assert.Equal(t, latest.Panel, got.Panel)
	assert.Equal(t, latest.Warnings, got.Warnings)
}

func TestSQLitePanelStore_NotFound(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Latest(context.Background(), "missing")
	assert.ErrorIs(t, err, domrepo.ErrPanelNotFound)
}

func TestSQLitePanelStore_ManyCells(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	p := &models.Panel{}
	vals := make([]models.Value, 0, 1500)
	for i := 0; i < 1500; i++ {
		p.Index = append(p.Index, d(1).AddDate(0, 0, i))
		vals = append(vals, models.Some(float64(i)))
	}
	p.Columns = []models.Column{{ID: "a", Values: vals}, {ID: "b", Values: vals}}

	require.NoError(t, s.Save(ctx, &models.PanelBuild{ID: "big", Name: "big", BuiltAt: d(1), Panel: p}))
	got, err := s.Latest(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, 1500, got.Panel.Len())
	assert.Equal(t, p.Columns, got.Panel.Columns)
	assert.Empty(t, got.Warnings)
}

func TestSQLitePanelStore_DatesBeyondNanosecondRange(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	p := &models.Panel{
		Index: []time.Time{
			time.Date(1600, time.January, 1, 0, 0, 0, 0, time.UTC),
			d(1),
			time.Date(2300, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
		Columns: []models.Column{{ID: "A", Values: []models.Value{models.Some(1), models.Null, models.Some(3)}}},
	}
	require.NoError(t, s.Save(ctx, &models.PanelBuild{ID: "wide", Name: "wide", BuiltAt: d(1), Panel: p}))

	got, err := s.Latest(ctx, "wide")
	require.NoError(t, err)
	assert.Equal(t, p, got.Panel)
}
