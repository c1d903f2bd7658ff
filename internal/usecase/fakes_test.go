package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := day(s)
	return &t
}

func series(id string, points map[string]float64, dates ...string) models.RawSeries {
	s := models.RawSeries{ID: id}
	for _, d := range dates {
		s.Index = append(s.Index, day(d))
		if v, ok := points[d]; ok {
			s.Values = append(s.Values, models.Some(v))
		} else {
			s.Values = append(s.Values, models.Null)
		}
	}
	return s
}

type fakeSource struct {
	name   string
	series map[string]models.RawSeries
	err    error
	calls  atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, spec models.SeriesSpec) (*models.RawSeries, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.series[spec.RemoteRef()]
	if !ok {
		return nil, errors.New("no such series")
	}
	s.ID = spec.ID
	s.Source = f.name
	return &s, nil
}

type memStore struct {
	mu     sync.Mutex
	builds map[string]*models.PanelBuild
	saves  int
	err    error
}

func newMemStore() *memStore {
	return &memStore{builds: map[string]*models.PanelBuild{}}
}

func (s *memStore) Init(context.Context) error { return nil }

func (s *memStore) Save(_ context.Context, b *models.PanelBuild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.builds[b.Name] = b
	return nil
}

func (s *memStore) Latest(_ context.Context, name string) (*models.PanelBuild, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.builds[name]
	if !ok {
		return nil, domrepo.ErrPanelNotFound
	}
	return b, nil
}

func (s *memStore) Health(context.Context) error { return nil }
func (s *memStore) Close() error { return nil }

type fakePublisher struct {
	events []models.PanelBuilt
	err    error
}

func (p *fakePublisher) PublishPanelBuilt(_ context.Context, ev models.PanelBuilt) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type mapCache struct {
	mu sync.Mutex
	m  map[string]models.RawSeries
}

func (c *mapCache) Get(_ context.Context, key string) (*models.RawSeries, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.m[key]
	if !ok {
		return nil, false, nil
	}
	return &s, true, nil
}

func (c *mapCache) Set(_ context.Context, key string, s *models.RawSeries) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string]models.RawSeries{}
	}
	c.m[key] = *s
	return nil
}

// dailyCalendar opens every day.
type dailyCalendar struct{}

func (dailyCalendar) BusinessDays(_ string, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}
