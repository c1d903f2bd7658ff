package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"FinPanel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FetchETFPrices(t *testing.T) {
	dir := t.TempDir()
	csv := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		"2024-01-02,21.1,21.3,21.0,21.2,20.9,1000\n" +
		"2024-01-03,21.2,21.4,21.1,21.3,21.0,1200\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SPMB.csv"), []byte(csv), 0o644))

	src := New(dir)
	s, err := src.Fetch(context.Background(), models.SeriesSpec{
		ID:           "rmbs_px",
		Source:       "file",
		Ref:          "SPMB",
		DateColumn:   "Date",
		ValueColumns: []string{"Adj Close", "Close"},
	})
	require.NoError(t, err)

	assert.Equal(t, "rmbs_px", s.ID)
	assert.Equal(t, "file", s.Source)
	assert.Equal(t, []models.Value{models.Some(20.9), models.Some(21.0)}, s.Values)
}

func TestSource_FetchMissingFile(t *testing.T) {
	src := New(t.TempDir())
	_, err := src.Fetch(context.Background(), models.SeriesSpec{ID: "nope"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
