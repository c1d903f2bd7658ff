package fred

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"FinPanel/internal/domain/models"
	drepo "FinPanel/internal/domain/repository"
	"FinPanel/internal/service/ratelimit"
	"FinPanel/internal/service/tabular"
	xhttp "FinPanel/pkg/http"
	applogger "FinPanel/pkg/logger"
)

const (
	DefaultBaseURL    = "https://fred.stlouisfed.org/graph/fredgraph.csv"
	DefaultDateColumn = "observation_date"
	SourceName        = "fred"
)

// ErrNotCSV is returned when FRED answers with an HTML page, usually a
// rate limit or error page.
var ErrNotCSV = errors.New("fred returned html instead of csv")

// Client implements SeriesSource over the public FRED graph CSV endpoint.
// No API key is needed.
type Client struct {
	baseURL string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	logger  *applogger.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(hc *xhttp.Client, opts ...Option) drepo.SeriesSource {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    hc,
		logger:  applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string { return SourceName }

// Fetch pulls one series. The date column defaults to observation_date and
// the value column to the FRED code; both can be overridden by the spec.
func (c *Client) Fetch(ctx context.Context, spec models.SeriesSpec) (*models.RawSeries, error) {
	code := spec.RemoteRef()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, SourceName); err != nil {
			return nil, fmt.Errorf("fred %s: rate limit: %w", code, err)
		}
	}

	start := time.Now()
	body, err := c.http.Get(ctx, c.baseURL, map[string][]string{"id": {code}})
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", code, err)
	}
	if looksLikeHTML(body) {
		return nil, fmt.Errorf("%w: series %s: %s", ErrNotCSV, code, preview(body))
	}

	m := tabular.Mapping{DateColumn: spec.DateColumn, ValueColumns: spec.ValueColumns}
	if m.DateColumn == "" {
		m.DateColumn = DefaultDateColumn
	}
	if len(m.ValueColumns) == 0 {
		m.ValueColumns = []string{code}
	}
	s, err := tabular.ParseCSV(bytes.NewReader(body), spec.ID, m)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", code, err)
	}
	s.Source = SourceName

	c.logger.Debug("fred series fetched",
		applogger.String("series", spec.ID),
		applogger.String("code", code),
		applogger.Int("observations", s.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return s, nil
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if bytes.HasPrefix(head, []byte("<!doctype html")) {
		return true
	}
	if len(head) > 200 {
		head = head[:200]
	}
	return bytes.Contains(head, []byte("<html"))
}

func preview(body []byte) string {
	const n = 200
	b := bytes.TrimSpace(body)
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
