package repository

import (
	"context"
	"errors"
	"time"

	"FinPanel/internal/domain/models"
)

var ErrPanelNotFound = errors.New("panel not found")

// SeriesSource retrieves one raw series under an explicit column mapping.
type SeriesSource interface {
	Name() string
	Fetch(ctx context.Context, spec models.SeriesSpec) (*models.RawSeries, error)
}

type SeriesCache interface {
	Get(ctx context.Context, key string) (*models.RawSeries, bool, error)
	Set(ctx context.Context, key string, s *models.RawSeries) error
}

type PanelStore interface {
	Init(ctx context.Context) error // ensure tables
	Save(ctx context.Context, b *models.PanelBuild) error
	// Latest returns the most recent build of the named panel.
	Latest(ctx context.Context, name string) (*models.PanelBuild, error)
	Health(ctx context.Context) error
	Close() error
}

type Publisher interface {
	PublishPanelBuilt(ctx context.Context, ev models.PanelBuilt) error
	Close() error
}

type Metrics interface {
	RecordBuild(panel string, ok bool, rows int)
	RecordWarning(panel string, kind models.WarningKind)
	RecordFetch(source string, ok bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// Calendar produces business-day grids for an exchange.
type Calendar interface {
	BusinessDays(mic string, from, to time.Time) ([]time.Time, error)
}
