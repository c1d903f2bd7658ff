package di

import (
	"context"
	"fmt"
	"time"

	"FinPanel/internal/domain/repository"
	"FinPanel/internal/handler/api"
	internalrepo "FinPanel/internal/repository"
	"FinPanel/internal/service/cache"
	"FinPanel/internal/service/files"
	"FinPanel/internal/service/fred"
	"FinPanel/internal/service/ratelimit"
	"FinPanel/internal/usecase"
	"FinPanel/pkg/calendar"
	pkgch "FinPanel/pkg/clickhouse"
	"FinPanel/pkg/config"
	xhttp "FinPanel/pkg/http"
	pkgkafka "FinPanel/pkg/kafka"
	applogger "FinPanel/pkg/logger"
	"FinPanel/pkg/metrics"
	"FinPanel/pkg/server"
	"FinPanel/pkg/sqlite"

	"github.com/prometheus/client_golang/prometheus"
)

const initTimeout = 15 * time.Second

func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegisterer returns the process-wide registry; the Kafka producer
// registers its collectors there too.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

// ProvidePanelStore opens the configured backend and ensures its tables.
func ProvidePanelStore(cfg *config.Config, l *applogger.Logger) (repository.PanelStore, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	var (
		store interface {
			repository.PanelStore
			SetLogger(*applogger.Logger)
		}
		closeBackend func() error
	)
	switch cfg.Store.Backend {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store, closeBackend = internalrepo.NewCHPanelStore(client), client.Close
	default:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		s := internalrepo.NewSQLitePanelStore(db)
		store, closeBackend = s, s.Close
	}
	store.SetLogger(l)

	if err := store.Init(ctx); err != nil {
		_ = closeBackend()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Store.Backend, err)
	}
	cleanup := func() {
		if err := closeBackend(); err != nil {
			l.Warn("panel store close error", applogger.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideSeriesCache uses Redis (behind a short in-process layer) when
// enabled, else an in-process TTL cache.
func ProvideSeriesCache(cfg *config.Config, l *applogger.Logger) (repository.SeriesCache, func(), error) {
	if !cfg.Redis.Enabled {
		return cache.NewSeriesCache(cache.NewTTLCache(), cfg.Redis.TTL), func() {}, nil
	}

	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return cache.NewSeriesCache(cache.NewLayeredCache(rc, time.Minute), cfg.Redis.TTL), cleanup, nil
}

// ProvideSources registers every series source by name.
func ProvideSources(cfg *config.Config, l *applogger.Logger) []repository.SeriesSource {
	hc := xhttp.NewClient(
		xhttp.WithTimeout(cfg.Fred.Timeout),
		xhttp.WithRetries(cfg.Fred.Retries, cfg.Fred.Backoff),
		xhttp.WithUserAgent(cfg.Fred.UserAgent),
	)
	return []repository.SeriesSource{
		fred.New(hc,
			fred.WithBaseURL(cfg.Fred.BaseURL),
			fred.WithLimiter(ratelimit.New(cfg.Fred.RPS, cfg.Fred.Burst)),
			fred.WithLogger(l),
		),
		files.New(cfg.Files.Dir),
	}
}

func ProvideCalendar() repository.Calendar {
	return calendar.New()
}

// ProvideKafkaProducer returns nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvidePublisher returns a nil Publisher when there is no producer.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Producer.Topic)
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

func ProvidePanelCatalog(cfg *config.Config) (*usecase.PanelCatalog, error) {
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	return usecase.NewPanelCatalog(defs)
}

func ProvidePanelPipeline(
	cfg *config.Config,
	catalog *usecase.PanelCatalog,
	sources []repository.SeriesSource,
	store repository.PanelStore,
	seriesCache repository.SeriesCache,
	publisher repository.Publisher,
	cal repository.Calendar,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.PanelPipeline {
	opts := []usecase.PipelineOption{
		usecase.WithSeriesCache(seriesCache),
		usecase.WithCalendar(cal),
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithConcurrency(cfg.Pipeline.Concurrency),
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	return usecase.NewPanelPipeline(catalog, sources, store, opts...)
}

func ProvidePanelQuery(store repository.PanelStore) *usecase.PanelQuery {
	return usecase.NewPanelQuery(store)
}

func ProvideRebuildHandler(cfg *config.Config, pipeline *usecase.PanelPipeline, m repository.Metrics) *usecase.RebuildHandler {
	return usecase.NewRebuildHandler(cfg.Kafka.Consumer.Topic, pipeline, m)
}

func ProvidePanelsHandler(
	l *applogger.Logger,
	catalog *usecase.PanelCatalog,
	query *usecase.PanelQuery,
	pipeline *usecase.PanelPipeline,
) *api.PanelsEchoHandler {
	return api.NewPanelsEchoHandler(l, catalog, query, pipeline)
}

func ProvideHealthHandler(l *applogger.Logger, store repository.PanelStore) *api.HealthEchoHandler {
	return api.NewHealthEchoHandler(l, store)
}

func ProvideHTTPServer(
	cfg *config.Config,
	l *applogger.Logger,
	panels *api.PanelsEchoHandler,
	health *api.HealthEchoHandler,
) *xhttp.Server {
	return xhttp.NewServer(l, []xhttp.Handler{panels, health},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(cfg.Metrics.Path, nil),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	store repository.PanelStore,
	consumer *pkgkafka.Consumer,
	rebuild *usecase.RebuildHandler,
) *server.App {
	return server.New(cfg, l, srv, store, consumer, rebuild)
}

// Runner is the one-shot build entrypoint used by the CLI.
type Runner struct {
	Catalog  *usecase.PanelCatalog
	Pipeline *usecase.PanelPipeline
	Logger   *applogger.Logger
}

func ProvideRunner(catalog *usecase.PanelCatalog, pipeline *usecase.PanelPipeline, l *applogger.Logger) *Runner {
	return &Runner{Catalog: catalog, Pipeline: pipeline, Logger: l}
}
