package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinPanel/internal/domain/models"
	"FinPanel/pkg/config"
	xhttp "FinPanel/pkg/http"
	applogger "FinPanel/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct{ healthErr error }

func (stubStore) Init(context.Context) error { return nil }

func (stubStore) Save(context.Context, *models.PanelBuild) error { return nil }

func (stubStore) Latest(context.Context, string) (*models.PanelBuild, error) {
	return nil, errors.New("empty")
}

func (s stubStore) Health(context.Context) error { return s.healthErr }

func (stubStore) Close() error { return nil }

func testApp(store stubStore) *App {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeout = time.Second
	srv := xhttp.NewServer(applogger.Nop(), nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(0),
		xhttp.WithMetrics("", prometheus.NewRegistry()),
	)
	return New(cfg, applogger.Nop(), srv, store, nil)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app := testApp(stubStore{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunFailsOnUnhealthyStore(t *testing.T) {
	app := testApp(stubStore{healthErr: errors.New("no db")})
	err := app.Run(context.Background())
	assert.ErrorContains(t, err, "panel store")
}
