package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/psyche/internal/injector"
	"github.com/zeusync/psyche/internal/scenario"
)

func newRunCmd() *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Run an engine session and print its final state",
		Long: "Run an engine session. With a scenario file the scripted steps are replayed on a manual clock " +
			"and the session ends when they are done; otherwise it runs for --duration or until interrupted.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var (
				doc   *scenario.Document
				clock *scenario.Clock
				now   injector.Clock
			)
			if len(args) == 1 {
				doc, err = loadScenario(args[0])
				if err != nil {
					return err
				}
				clock = scenario.NewClock(time.Now())
				now = clock.Now
				// steps own the clock; wall clock tickers would decay against it
				cfg.Host.Manual = true
			}

			app, cleanup, err := injector.InitializeApp(cfg, now)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = app.Driver.RunWith(ctx, func(ctx context.Context) error {
				if doc != nil {
					_, err := doc.Play(ctx, app.Driver, clock, app.Logger)
					return err
				}
				var wait <-chan time.Time
				if duration > 0 {
					wait = time.After(duration)
				}
				select {
				case <-ctx.Done():
				case <-wait:
				}
				return nil
			})
			if err != nil {
				return err
			}

			reportAt := time.Now()
			if clock != nil {
				reportAt = clock.Now()
			}
			return renderReport(cmd.OutOrStdout(), app.Engine, reportAt)
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	return cmd
}

func loadScenario(path string) (*scenario.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return scenario.Load(f)
}
