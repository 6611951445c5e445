package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/cues"
	"intervaltimer/internal/library"
	"intervaltimer/internal/platform"
)

func newRunCmd(env *cliEnv) *cobra.Command {
	var (
		flags     quickFlags
		tick      time.Duration
		noAwake   bool
		countdown int
	)

	cmd := &cobra.Command{
		Use:   "run <preset|quick>",
		Short: "Run a workout in the terminal",
		Long: `Run a saved preset, or "quick" to run the quick-start sets.
Press Ctrl+C to stop.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var preset model.Preset
			err := env.withLibrary(func(lib *library.Service) error {
				if args[0] == "quick" {
					sets, work, rest, err := flags.values(env.settings)
					if err != nil {
						return err
					}
					preset, err = lib.QuickStart(sets, work, rest, false)
					return err
				}
				var err error
				preset, err = lib.Resolve(args[0])
				return err
			})
			if err != nil {
				return err
			}
			if len(preset.Phases) == 0 {
				return fmt.Errorf("preset %q has no phases", preset.DisplayName())
			}

			if tick <= 0 {
				tick = env.settings.TickInterval
			}
			if !cmd.Flags().Changed("countdown") {
				countdown = env.settings.CountdownSeconds
			}

			engine := intervals.New(intervals.Config{TickInterval: tick})
			if env.settings.KeepAwake && !noAwake {
				engine.SetContinuation(platform.NewContinuation(appName))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printPresetLine(cmd.OutOrStdout(), preset)
			director := cues.NewDirector(cues.NewBellSink(cmd.OutOrStdout(), styleCue), countdown, env.logger)
			return runWorkout(ctx, engine, director, preset, env)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&tick, "tick", 0, "Wake interval (default: from settings)")
	cmd.Flags().BoolVar(&noAwake, "no-keep-awake", false, "Do not hold off system sleep while running")
	cmd.Flags().IntVar(&countdown, "countdown", 3, "Announce the last N seconds of each phase (0 disables)")
	return cmd
}

// runWorkout drives engine until completion or until ctx is cancelled. Cues and
// completion come from engine callbacks, which see every event.
func runWorkout(ctx context.Context, engine *intervals.Engine, director *cues.Director, preset model.Preset, env *cliEnv) error {
	done := make(chan struct{})
	engine.SetCallbacks(intervals.Callbacks{
		OnEvent: func(event intervals.Event) {
			if event.Type == intervals.EventContinuationError {
				env.logger.Errorf("%s", event.Message)
			}
			director.Handle(event)
		},
		OnCompleted: func() {
			close(done)
		},
	})
	defer engine.Close()

	engine.Load(preset.Phases)
	engine.Start()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		engine.Stop()
		env.logger.Infof("workout stopped")
		return nil
	}
}
