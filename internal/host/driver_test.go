package host

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/psyche/internal/core/events/bus"
	"github.com/zeusync/psyche/internal/core/memory"
	"github.com/zeusync/psyche/internal/core/models"
	"github.com/zeusync/psyche/internal/core/observability/log"
	"github.com/zeusync/psyche/internal/core/psyche"
)

func fastConfig() Config {
	return Config{DecayInterval: 5 * time.Millisecond, HappinessInterval: 10 * time.Millisecond}
}

func TestDriverRunsCommandsAndTicks(t *testing.T) {
	engine := psyche.New(psyche.DefaultConfig(), log.NewNop())
	ticked := make(chan struct{}, 1)
	_, err := engine.Subscribe(models.KindHappinessUpdated, func(bus.Event) error {
		select {
		case ticked <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	d := New(fastConfig(), engine, log.NewNop())
	var id memory.ID
	err = d.RunWith(context.Background(), func(ctx context.Context) error {
		if err := d.Do(ctx, func(e *psyche.Engine) error {
			var err error
			id, err = e.CreateMemory(psyche.MemoryRequest{
				Title:      "harbour",
				Category:   models.CategoryEpisodic,
				Importance: models.ImportanceMedium,
				Intensity:  30,
			})
			return err
		}); err != nil {
			return err
		}

		select {
		case <-ticked:
		case <-time.After(2 * time.Second):
			return errors.New("no happiness tick")
		}

		return d.Do(ctx, func(e *psyche.Engine) error {
			_, err := e.GetMemory(id)
			return err
		})
	})
	require.NoError(t, err)
	assert.False(t, engine.Stats().LastHappiness.IsZero())
}

func TestRunWithReturnsCallbackError(t *testing.T) {
	d := New(fastConfig(), psyche.New(psyche.DefaultConfig(), log.NewNop()), log.NewNop())
	boom := errors.New("boom")
	err := d.RunWith(context.Background(), func(ctx context.Context) error {
		return d.Do(ctx, func(*psyche.Engine) error { return boom })
	})
	assert.ErrorIs(t, err, boom)
}

func TestDoAfterStopFails(t *testing.T) {
	d := New(fastConfig(), psyche.New(psyche.DefaultConfig(), log.NewNop()), log.NewNop())
	require.NoError(t, d.RunWith(context.Background(), func(context.Context) error { return nil }))

	err := d.Do(context.Background(), func(*psyche.Engine) error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDoHonoursContext(t *testing.T) {
	d := New(fastConfig(), psyche.New(psyche.DefaultConfig(), log.NewNop()), log.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Do(ctx, func(*psyche.Engine) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{DecayInterval: 0, HappinessInterval: time.Second}.Validate())
	assert.Error(t, Config{DecayInterval: time.Second}.Validate())
	assert.NoError(t, Config{Manual: true}.Validate())
}

func TestManualDriverNeverTicks(t *testing.T) {
	engine := psyche.New(psyche.DefaultConfig(), log.NewNop())
	updates := 0
	_, err := engine.Subscribe(models.KindHappinessUpdated, func(bus.Event) error {
		updates++
		return nil
	})
	require.NoError(t, err)

	cfg := fastConfig()
	cfg.Manual = true
	d := New(cfg, engine, log.NewNop())

	err = d.RunWith(context.Background(), func(ctx context.Context) error {
		// many tick intervals pass with the loop idle
		time.Sleep(100 * time.Millisecond)
		return d.Do(ctx, func(e *psyche.Engine) error {
			stats := e.Stats()
			if !stats.LastDecay.IsZero() || !stats.LastHappiness.IsZero() {
				return errors.New("tick fired in manual mode")
			}
			e.RecomputeHappiness()
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updates)
	assert.True(t, engine.Stats().LastDecay.IsZero())
}
