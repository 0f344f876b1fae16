package injector

import (
	"time"

	"github.com/google/wire"

	"github.com/zeusync/psyche/internal/config"
	"github.com/zeusync/psyche/internal/core/events/bus"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/psyche"
	"github.com/zeusync/psyche/internal/host"
)

// Clock is the time source handed to the engine. A nil Clock means time.Now.
type Clock func() time.Time

// App is everything a psyche host needs at runtime.
type App struct {
	Config config.Config
	Logger *log.Logger
	Bus    bus.EventBus
	Engine *psyche.Engine
	Driver *host.Driver
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideEngine,
	ProvideDriver,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.LogLevel(), cfg.Log.Output)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideEngine(cfg config.Config, logger *log.Logger, b bus.EventBus, clock Clock) *psyche.Engine {
	opts := []psyche.Option{psyche.WithBus(b)}
	if clock != nil {
		opts = append(opts, psyche.WithClock(clock))
	}
	return psyche.New(cfg.Config, logger, opts...)
}

func ProvideDriver(cfg config.Config, engine *psyche.Engine, logger *log.Logger) *host.Driver {
	return host.New(cfg.Host, engine, logger)
}
