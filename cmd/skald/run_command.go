package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"skald/internal/config"
	"skald/internal/logging"
	"skald/internal/preflight"
	"skald/internal/queue"
	"skald/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				lockPath := filepath.Join(cfg.Paths.LogDir, "skald.lock")
				lock := flock.New(lockPath)
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !locked {
					return errors.New("another skald runner is already active")
				}
				defer lock.Unlock()

				if !skipPreflight {
					results := preflight.RunAll(cmd.Context(), cfg)
					for _, result := range results {
						status := "ok"
						if !result.Passed {
							status = "FAIL"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-4s %s\n", result.Name, status, result.Detail)
					}
					if failed := preflight.Failed(results); len(failed) > 0 {
						return fmt.Errorf("%d preflight check(s) failed", len(failed))
					}
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("build logger: %w", err)
				}

				manager := workflow.NewManager(cfg, store, logger)

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := manager.Start(runCtx); err != nil {
					return fmt.Errorf("start workflow: %w", err)
				}

				<-runCtx.Done()
				manager.Stop()

				usage := manager.UsageSnapshot()
				logger.Info("runner stopped",
					logging.Int("llm_calls", usage.Calls),
					logging.Int("total_tokens", usage.TotalTokens()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip startup checks")
	return cmd
}
