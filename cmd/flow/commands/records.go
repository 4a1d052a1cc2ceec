package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/flow/internal/flowapi"
	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/tracker"
	"github.com/benvon/flow/internal/validation"
	"github.com/spf13/cobra"
)

func newRecordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "records",
		Aliases: []string{"r"},
		Short:   "Manage time records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List time records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, opts, func(ctx context.Context, a *app, tr *tracker.Tracker) error {
				return printRecords(cmd.OutOrStdout(), tr.State().Records, time.Now())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start tracking time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, opts, func(ctx context.Context, a *app, tr *tracker.Tracker) error {
				if err := tr.StartTimer(ctx); err != nil {
					return err
				}
				printTimerState(cmd.OutOrStdout(), tr.State())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop tracking time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, opts, func(ctx context.Context, a *app, tr *tracker.Tracker) error {
				if err := tr.StopTimer(ctx); err != nil {
					return err
				}
				printTimerState(cmd.OutOrStdout(), tr.State())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a time record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSelected(cmd, opts, args[0], func(ctx context.Context, tr *tracker.Tracker) error {
				if err := tr.DeleteSelected(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted time record %s\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <id> <tag>",
		Short: "Add a tag to a time record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateTag(args[1]); err != nil {
				return err
			}
			return withSelected(cmd, opts, args[0], func(ctx context.Context, tr *tracker.Tracker) error {
				if err := tr.TagSelected(ctx, args[1]); err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), selectedRecords(tr), time.Now())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "untag <id> <tag>",
		Short: "Remove a tag from a time record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateTag(args[1]); err != nil {
				return err
			}
			return withSelected(cmd, opts, args[0], func(ctx context.Context, tr *tracker.Tracker) error {
				if err := tr.UntagSelected(ctx, args[1]); err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), selectedRecords(tr), time.Now())
			})
		},
	})

	cmd.AddCommand(newRecordDatesCmd(opts))

	return cmd
}

func newRecordDatesCmd(opts *rootOptions) *cobra.Command {
	var startFlag, endFlag string

	cmd := &cobra.Command{
		Use:   "dates <id>",
		Short: "Change the start and/or end of a time record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimeFlag(startFlag)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			end, err := parseTimeFlag(endFlag)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			if start == nil && end == nil {
				return errors.New("at least one of --start or --end is required")
			}
			if start != nil && end != nil && end.Before(*start) {
				return errors.New("end must not be before start")
			}
			return withSelected(cmd, opts, args[0], func(ctx context.Context, tr *tracker.Tracker) error {
				if err := tr.ModifySelectedDates(ctx, start, end); err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), selectedRecords(tr), time.Now())
			})
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "New start time (RFC3339 or 20060102T150405Z)")
	cmd.Flags().StringVar(&endFlag, "end", "", "New end time (RFC3339 or 20060102T150405Z)")
	return cmd
}

// withSelected loads the tracker and selects record id before running fn
func withSelected(cmd *cobra.Command, opts *rootOptions, id string, fn func(ctx context.Context, tr *tracker.Tracker) error) error {
	return withTracker(cmd, opts, func(ctx context.Context, a *app, tr *tracker.Tracker) error {
		if err := tr.Select(id); err != nil {
			return err
		}
		return fn(ctx, tr)
	})
}

func selectedRecords(tr *tracker.Tracker) []models.TimeRecord {
	s := tr.State()
	if s.SelectedRecord == nil {
		return nil
	}
	return []models.TimeRecord{*s.SelectedRecord}
}

func parseTimeFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return flowapi.ParseTimestamp(s, time.Local)
}
