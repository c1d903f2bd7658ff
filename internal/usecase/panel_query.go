package usecase

import (
	"context"
	"fmt"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
)

// PanelQuery serves stored builds.
type PanelQuery struct {
	store domrepo.PanelStore
}

func NewPanelQuery(store domrepo.PanelStore) *PanelQuery {
	return &PanelQuery{store: store}
}

type PanelQueryParams struct {
	Name    string
	From    *time.Time
	To      *time.Time
	Columns []string
}

// Latest returns the most recent build of the panel clipped to [From, To]
// and projected onto Columns (all columns when empty).
func (q *PanelQuery) Latest(ctx context.Context, p PanelQueryParams) (*models.PanelBuild, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("%w: panel name required", ErrInvalidRequest)
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return nil, fmt.Errorf("%w: from must be <= to", ErrInvalidRequest)
	}

	b, err := q.store.Latest(ctx, p.Name)
	if err != nil {
		return nil, fmt.Errorf("latest %s: %w", p.Name, err)
	}
	for _, id := range p.Columns {
		if _, ok := b.Panel.Column(id); !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidRequest, id)
		}
	}

	out := *b
	out.Panel = b.Panel.Slice(models.Window{Start: p.From, End: p.To}, p.Columns)
	return &out, nil
}
