package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/internal/service/cache"
	"FinPanel/internal/services/panel"
	applogger "FinPanel/pkg/logger"
	"FinPanel/pkg/metrics"
	"FinPanel/pkg/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 4

// PanelPipeline pulls every series of a panel, builds it and persists the
// result. All series are materialized before the build starts.
type PanelPipeline struct {
	catalog     *PanelCatalog
	sources     map[string]domrepo.SeriesSource
	store       domrepo.PanelStore
	cache       domrepo.SeriesCache
	publisher   domrepo.Publisher
	calendar    domrepo.Calendar
	metrics     domrepo.Metrics
	log         *applogger.Logger
	concurrency int
	now         func() time.Time
	newID       func() string
}

type PipelineOption func(*PanelPipeline)

func WithSeriesCache(c domrepo.SeriesCache) PipelineOption {
	return func(p *PanelPipeline) { p.cache = c }
}

func WithPublisher(pub domrepo.Publisher) PipelineOption {
	return func(p *PanelPipeline) { p.publisher = pub }
}

func WithCalendar(c domrepo.Calendar) PipelineOption {
	return func(p *PanelPipeline) { p.calendar = c }
}

func WithMetrics(m domrepo.Metrics) PipelineOption {
	return func(p *PanelPipeline) { p.metrics = m }
}

func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *PanelPipeline) { p.log = l }
}

// WithConcurrency bounds the number of series fetched at once.
func WithConcurrency(n int) PipelineOption {
	return func(p *PanelPipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock replaces time.Now, which stamps builds and resolves "today".
func WithClock(now func() time.Time) PipelineOption {
	return func(p *PanelPipeline) { p.now = now }
}

func WithIDGenerator(f func() string) PipelineOption {
	return func(p *PanelPipeline) { p.newID = f }
}

func NewPanelPipeline(catalog *PanelCatalog, sources []domrepo.SeriesSource, store domrepo.PanelStore, opts ...PipelineOption) *PanelPipeline {
	p := &PanelPipeline{
		catalog:     catalog,
		sources:     make(map[string]domrepo.SeriesSource, len(sources)),
		store:       store,
		metrics:     metrics.Nop{},
		log:         applogger.Nop(),
		concurrency: defaultConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, s := range sources {
		p.sources[s.Name()] = s
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rebuild builds the named panel up to end (YYYY-MM-DD, empty for today).
func (p *PanelPipeline) Rebuild(ctx context.Context, name, end string) (*models.PanelBuild, error) {
	def, err := p.catalog.Get(name)
	if err != nil {
		return nil, err
	}
	endDate := util.DateOf(p.now())
	if end != "" {
		if endDate, err = util.ParseDate(end); err != nil {
			return nil, fmt.Errorf("%w: end: %v", ErrInvalidRequest, err)
		}
	}
	return p.Run(ctx, def, endDate)
}

// Run builds def with its window end capped at end (zero end leaves the
// declared window alone), saves the build and publishes PanelBuilt.
func (p *PanelPipeline) Run(ctx context.Context, def models.PanelDefinition, end time.Time) (*models.PanelBuild, error) {
	start := time.Now()
	log := p.log.With(applogger.String("panel", def.Name))

	series, err := p.fetchAll(ctx, def.Series)
	if err != nil {
		p.metrics.RecordBuild(def.Name, false, 0)
		return nil, err
	}

	window := effectiveWindow(def.Window, end)
	var opts []panel.Option
	if def.Calendar != "" && p.calendar != nil {
		grid, err := p.grid(def.Calendar, series, window)
		if err != nil {
			p.metrics.RecordBuild(def.Name, false, 0)
			return nil, fmt.Errorf("calendar %s: %w", def.Calendar, err)
		}
		opts = append(opts, panel.WithGrid(grid))
	}

	built, warnings, err := panel.Build(series, def.Rules, window, opts...)
	if err != nil {
		p.metrics.RecordBuild(def.Name, false, 0)
		p.metrics.RecordError("build")
		return nil, fmt.Errorf("build panel %s: %w", def.Name, err)
	}
	for _, w := range warnings {
		p.metrics.RecordWarning(def.Name, w.Kind)
		log.Warn("panel data quality",
			applogger.String("kind", string(w.Kind)),
			applogger.String("column", w.Column),
			applogger.String("message", w.Message),
		)
	}

	b := &models.PanelBuild{
		ID:       p.newID(),
		Name:     def.Name,
		BuiltAt:  p.now().UTC(),
		Panel:    built,
		Warnings: warnings,
	}
	if err := p.store.Save(ctx, b); err != nil {
		p.metrics.RecordBuild(def.Name, false, 0)
		p.metrics.RecordError("store")
		return nil, fmt.Errorf("save panel %s: %w", def.Name, err)
	}
	p.metrics.RecordBuild(def.Name, true, built.Len())
	p.metrics.RecordLatency("panel_build", time.Since(start).Seconds())

	if p.publisher != nil {
		if err := p.publisher.PublishPanelBuilt(ctx, models.NewPanelBuilt(b)); err != nil {
			// the build is already stored; consumers can catch up from the store
			p.metrics.RecordError("publish")
			log.Error("publish panel built", applogger.String("build_id", b.ID), applogger.Error(err))
		}
	}

	log.Info("panel built",
		applogger.String("build_id", b.ID),
		applogger.Int("rows", built.Len()),
		applogger.Int("columns", len(built.Columns)),
		applogger.Int("warnings", len(warnings)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return b, nil
}

func (p *PanelPipeline) fetchAll(ctx context.Context, specs []models.SeriesSpec) ([]models.RawSeries, error) {
	out := make([]models.RawSeries, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			s, err := p.fetch(gctx, spec)
			if err != nil {
				return fmt.Errorf("%w: %s from %s: %w", ErrFetch, spec.ID, spec.Source, err)
			}
			out[i] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *PanelPipeline) fetch(ctx context.Context, spec models.SeriesSpec) (*models.RawSeries, error) {
	key := cache.Key(spec)
	if p.cache != nil {
		s, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			p.log.Warn("series cache read", applogger.String("key", key), applogger.Error(err))
		} else if ok {
			return s, nil
		}
	}

	src, ok := p.sources[spec.Source]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, spec.Source)
	}
	start := time.Now()
	s, err := src.Fetch(ctx, spec)
	p.metrics.RecordFetch(spec.Source, err == nil)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.metrics.RecordError("fetch")
		}
		return nil, err
	}
	p.metrics.RecordLatency("series_fetch", time.Since(start).Seconds())
	p.log.Debug("series fetched",
		applogger.String("series", spec.ID),
		applogger.String("source", spec.Source),
		applogger.Int("points", s.Len()),
	)

	if p.cache != nil {
		if err := p.cache.Set(ctx, key, s); err != nil {
			p.log.Warn("series cache write", applogger.String("key", key), applogger.Error(err))
		}
	}
	return s, nil
}

// grid spans the window, or the observed range on an open side.
func (p *PanelPipeline) grid(mic string, series []models.RawSeries, w models.Window) ([]time.Time, error) {
	var from, to time.Time
	for _, s := range series {
		if s.Len() == 0 {
			continue
		}
		if first := s.Index[0]; from.IsZero() || first.Before(from) {
			from = first
		}
		if last := s.Index[s.Len()-1]; last.After(to) {
			to = last
		}
	}
	if w.Start != nil {
		from = *w.Start
	}
	if w.End != nil {
		to = *w.End
	}
	if from.IsZero() || to.IsZero() {
		return nil, nil
	}
	return p.calendar.BusinessDays(mic, from, to)
}

func effectiveWindow(w models.Window, end time.Time) models.Window {
	if end.IsZero() {
		return w
	}
	if w.End == nil || end.Before(*w.End) {
		e := end
		w.End = &e
	}
	return w
}
