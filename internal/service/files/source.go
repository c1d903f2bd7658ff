// Package files serves raw series from CSV files on local disk, such as
// downloaded ETF price histories or hand-maintained tables.
package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"FinPanel/internal/domain/models"
	drepo "FinPanel/internal/domain/repository"
	"FinPanel/internal/service/tabular"
)

const (
	SourceName        = "file"
	DefaultDateColumn = "date"
)

type Source struct {
	dir string
}

// New reads <dir>/<ref>.csv for each requested series.
func New(dir string) drepo.SeriesSource {
	return &Source{dir: dir}
}

func (s *Source) Name() string { return SourceName }

func (s *Source) Fetch(ctx context.Context, spec models.SeriesSpec) (*models.RawSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, filepath.Base(spec.RemoteRef())+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m := tabular.Mapping{DateColumn: spec.DateColumn, ValueColumns: spec.ValueColumns}
	if m.DateColumn == "" {
		m.DateColumn = DefaultDateColumn
	}
	if len(m.ValueColumns) == 0 {
		m.ValueColumns = []string{spec.ID}
	}
	rs, err := tabular.ParseCSV(f, spec.ID, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rs.Source = SourceName
	return rs, nil
}
