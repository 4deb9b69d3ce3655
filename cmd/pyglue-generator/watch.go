package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pyglue-generator/internal/pipeline"
	"pyglue-generator/internal/policy"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &genOptions{}

	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <header|dir>...",
		Short: "Regenerate whenever an input header or the policy file changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gc, err := global.setup()
			if err != nil {
				return err
			}
			defer syncLogger(gc.Log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &pipeline.Watcher{
				GC:       gc,
				Inputs:   args,
				Options:  opts.pipeline(),
				Debounce: debounce,
				OnRun: func(s *pipeline.Summary, err error) {
					switch {
					case err != nil:
						gc.Log.Errorw("run failed", "error", err)
					case s != nil:
						gc.Log.Infow("run complete",
							"files", len(s.Files),
							"failed", len(s.Failed()),
							"changed", len(s.Changed))
					}
				},
			}

			if path := global.resolvedPolicyPath(); path != "" {
				w.Extra = []string{path}
				w.Reload = func() (*policy.Policy, error) {
					return global.loadPolicy()
				}
			}

			gc.Log.Infow("watching", "inputs", args)

			return w.Watch(ctx)
		},
	}

	opts.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", pipeline.DefaultDebounce, "Quiet period before a rerun")

	return cmd
}
