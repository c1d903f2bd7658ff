//go:build wireinject
// +build wireinject

package di

import (
	"FinPanel/pkg/config"
	"FinPanel/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegisterer,
	ProvideMetrics,
	ProvidePanelStore,
	ProvideSeriesCache,
	ProvideSources,
	ProvideCalendar,
	ProvideKafkaProducer,
	ProvidePublisher,
)

var pipelineSet = wire.NewSet(
	infraSet,
	ProvidePanelCatalog,
	ProvidePanelPipeline,
)

// InitializeApp wires the long running service.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		pipelineSet,
		ProvidePanelQuery,
		ProvidePanelsHandler,
		ProvideHealthHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideRebuildHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeRunner wires the one-shot build used by the CLI.
func InitializeRunner(cfg *config.Config) (*Runner, func(), error) {
	wire.Build(
		pipelineSet,
		ProvideRunner,
	)
	return nil, nil, nil
}
