package usecase

import (
	"context"
	"testing"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedBuild() *models.PanelBuild {
	return &models.PanelBuild{
		ID:   "b1",
		Name: "test",
		Panel: &models.Panel{
			Index: []time.Time{day("2024-01-01"), day("2024-01-02"), day("2024-01-03")},
			Columns: []models.Column{
				{ID: "A", Values: []models.Value{models.Some(1), models.Some(2), models.Some(3)}},
				{ID: "B", Values: []models.Value{models.Null, models.Some(20), models.Null}},
			},
		},
	}
}

func TestPanelQuery_Latest(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Save(context.Background(), storedBuild()))
	q := NewPanelQuery(store)

	b, err := q.Latest(context.Background(), PanelQueryParams{
		Name:    "test",
		From:    datePtr("2024-01-02"),
		Columns: []string{"B"},
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, []time.Time{day("2024-01-02"), day("2024-01-03")}, b.Panel.Index)
	assert.Equal(t, []string{"B"}, b.Panel.ColumnIDs())

	// the stored build is not modified
	stored, _ := store.Latest(context.Background(), "test")
	assert.Equal(t, 3, stored.Panel.Len())
}

func TestPanelQuery_Errors(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Save(context.Background(), storedBuild()))
	q := NewPanelQuery(store)
	ctx := context.Background()

	_, err := q.Latest(ctx, PanelQueryParams{Name: "missing"})
	assert.ErrorIs(t, err, domrepo.ErrPanelNotFound)

	_, err = q.Latest(ctx, PanelQueryParams{Name: "test", From: datePtr("2024-01-03"), To: datePtr("2024-01-01")})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = q.Latest(ctx, PanelQueryParams{Name: "test", Columns: []string{"Z"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = q.Latest(ctx, PanelQueryParams{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
