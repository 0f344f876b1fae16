package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/psyche"
)

var ErrStopped = errors.New("driver is not running")

type Config struct {
	DecayInterval     time.Duration `yaml:"decay_interval" env:"DECAY_INTERVAL"`
	HappinessInterval time.Duration `yaml:"happiness_interval" env:"HAPPINESS_INTERVAL"`

	// Manual disables both tickers. Decay and happiness then only advance
	// through commands, e.g. while a scenario drives a manual clock.
	Manual bool `yaml:"-" env:"-"`
}

func DefaultConfig() Config {
	return Config{
		DecayInterval:     time.Second,
		HappinessInterval: 5 * time.Minute,
	}
}

func (c Config) Validate() error {
	if c.Manual {
		return nil
	}
	if c.DecayInterval <= 0 {
		return fmt.Errorf("decay interval must be positive, got %s", c.DecayInterval)
	}
	if c.HappinessInterval <= 0 {
		return fmt.Errorf("happiness interval must be positive, got %s", c.HappinessInterval)
	}
	return nil
}

type command struct {
	fn   func(*psyche.Engine) error
	done chan error
}

// Driver owns an engine on a single goroutine: the decay tick, the
// happiness recompute and every caller command run on it in turn.
type Driver struct {
	cfg    Config
	engine *psyche.Engine
	logger log.Log

	cmds    chan command
	started chan struct{}
	stopped chan struct{}
}

func New(cfg Config, engine *psyche.Engine, logger log.Log) *Driver {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Driver{
		cfg:     cfg,
		engine:  engine,
		logger:  logger.With(log.String("component", "host")),
		cmds:    make(chan command),
		started: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run drives the engine until ctx is cancelled. It must be called once.
func (d *Driver) Run(ctx context.Context) error {
	close(d.started)
	defer close(d.stopped)

	// nil channels never fire, which keeps the manual mode loop identical
	var decayC, happinessC <-chan time.Time
	if !d.cfg.Manual {
		decay := time.NewTicker(d.cfg.DecayInterval)
		defer decay.Stop()
		happiness := time.NewTicker(d.cfg.HappinessInterval)
		defer happiness.Stop()
		decayC, happinessC = decay.C, happiness.C
	}

	d.logger.Info("driver started",
		log.Bool("manual", d.cfg.Manual),
		log.Duration("decay_interval", d.cfg.DecayInterval),
		log.Duration("happiness_interval", d.cfg.HappinessInterval),
	)

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("driver stopped")
			return nil
		case now := <-decayC:
			deltaTime := now.Sub(lastTime)
			lastTime = now
			d.engine.DecayTick(deltaTime)
		case <-happinessC:
			m := d.engine.RecomputeHappiness()
			d.logger.Debug("happiness tick", log.Float64("overall", m.Overall))
		case cmd := <-d.cmds:
			cmd.done <- cmd.fn(d.engine)
		}
	}
}

// Do runs fn on the driver goroutine and returns its error.
func (d *Driver) Do(ctx context.Context, fn func(*psyche.Engine) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case d.cmds <- cmd:
	case <-d.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWith runs the driver and fn side by side. The driver is stopped once
// fn returns, and fn's error is returned.
func (d *Driver) RunWith(ctx context.Context, fn func(ctx context.Context) error) error {
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(loopCtx)
	g.Go(func() error { return d.Run(gctx) })
	g.Go(func() error {
		defer stop()
		select {
		case <-d.started:
		case <-gctx.Done():
			return gctx.Err()
		}
		return fn(gctx)
	})
	return g.Wait()
}
