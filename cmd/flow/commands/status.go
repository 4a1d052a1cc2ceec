package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/benvon/flow/internal/tracker"
	"github.com/benvon/flow/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether time is being tracked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, opts, func(ctx context.Context, a *app, tr *tracker.Tracker) error {
				printTimerState(cmd.OutOrStdout(), tr.State())
				return nil
			})
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live timer and the record list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
				defer stop()

				tr, publisher, err := a.newTracker()
				if err != nil {
					return err
				}
				defer func() {
					if err := publisher.Close(); err != nil {
						a.logger.Warn("failed_to_close_event_publisher", zap.Error(err))
					}
				}()

				states, unsubscribe := tr.Subscribe()
				defer unsubscribe()

				resyncer := tracker.NewResyncer(tr, a.cfg.ResyncInterval, a.logger)
				go func() {
					if err := resyncer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Warn("resyncer_stopped_with_error", zap.Error(err))
					}
				}()
				// load failures surface on the error channel
				go func() { _ = tr.Load(ctx) }()

				p := tea.NewProgram(tui.New(tr, states, tr.Errors()), tea.WithAltScreen(), tea.WithContext(ctx))
				_, err = p.Run()
				stop()
				tr.Close()
				if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return fmt.Errorf("error running watch view: %w", err)
				}
				return nil
			})
		},
	}
}
