package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/flow/internal/models"
	"github.com/benvon/flow/internal/validation"
	"github.com/spf13/cobra"
)

func newTasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}

	cmd.AddCommand(newTasksListCmd(opts))
	cmd.AddCommand(newTasksAddCmd(opts))
	cmd.AddCommand(newTasksEditCmd(opts))
	cmd.AddCommand(newTaskActionCmd(opts, "done", "Mark a task as done", "Completed",
		func(ctx context.Context, a *app, id string) (models.Task, error) { return a.tasks.MarkDone(ctx, id) }))
	cmd.AddCommand(newTaskActionCmd(opts, "start", "Start working on a task", "Started",
		func(ctx context.Context, a *app, id string) (models.Task, error) { return a.tasks.Start(ctx, id) }))
	cmd.AddCommand(newTaskActionCmd(opts, "stop", "Stop working on a task", "Stopped",
		func(ctx context.Context, a *app, id string) (models.Task, error) { return a.tasks.Stop(ctx, id) }))
	cmd.AddCommand(newTaskActionCmd(opts, "delete", "Delete a task", "Deleted",
		func(ctx context.Context, a *app, id string) (models.Task, error) { return a.tasks.Delete(ctx, id) }))

	return cmd
}

func newTasksListCmd(opts *rootOptions) *cobra.Command {
	var (
		status, project, priority, description string
		tags                                   []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := models.DefaultTaskFilter()
			if cmd.Flags().Changed("status") {
				if err := validation.ValidateTaskStatus(status); err != nil {
					return err
				}
				filter.Status = &status
			}
			if project != "" {
				filter.Project = &project
			}
			if priority != "" {
				if err := validation.ValidateTaskPriority(priority); err != nil {
					return err
				}
				filter.Priority = &priority
			}
			filter.Description = description
			if len(tags) > 0 {
				filter.Tags = tags
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				tasks, err := a.tasks.List(ctx, &filter)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), tasks)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, completed, deleted, waiting, recurring)")
	cmd.Flags().StringVar(&project, "project", "", "Filter by project")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (H, M, L)")
	cmd.Flags().StringVar(&description, "description", "", "Filter by description")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Filter by tag (repeatable)")
	return cmd
}

func newTasksAddCmd(opts *rootOptions) *cobra.Command {
	var dueFlag, project, priority string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.Join(args, " ")
			due, err := parseTimeFlag(dueFlag)
			if err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			var projectPtr, priorityPtr *string
			if project != "" {
				projectPtr = &project
			}
			if priority != "" {
				if err := validation.ValidateTaskPriority(priority); err != nil {
					return err
				}
				priorityPtr = &priority
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.Create(ctx, description, due, projectPtr, priorityPtr)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), "Created", task)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&dueFlag, "due", "", "Due date (RFC3339 or 20060102T150405Z)")
	cmd.Flags().StringVar(&project, "project", "", "Project name")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (H, M, L)")
	return cmd
}

func newTasksEditCmd(opts *rootOptions) *cobra.Command {
	var (
		description, dueFlag, project, priority, recur, untilFlag string
		tags, depends                                             []string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit models.TaskEdit
			flags := cmd.Flags()
			if flags.Changed("description") {
				edit.Description = &description
			}
			if flags.Changed("project") {
				edit.Project = &project
			}
			if flags.Changed("priority") {
				edit.Priority = &priority
			}
			if flags.Changed("recur") {
				edit.Recurring = &recur
			}
			if flags.Changed("tags") {
				edit.Tags = append([]string{}, tags...)
			}
			if flags.Changed("depends") {
				edit.Depends = append([]string{}, depends...)
			}
			var err error
			if edit.Due, err = parseTimeFlag(dueFlag); err != nil {
				return fmt.Errorf("invalid --due: %w", err)
			}
			if edit.Until, err = parseTimeFlag(untilFlag); err != nil {
				return fmt.Errorf("invalid --until: %w", err)
			}
			if err := validation.Validate.Struct(edit); err != nil {
				return fmt.Errorf("invalid edit: %s", validation.FirstError(err))
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := a.tasks.Edit(ctx, args[0], edit)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), "Edited", task)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&dueFlag, "due", "", "New due date")
	cmd.Flags().StringVar(&project, "project", "", "New project")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority (H, M, L)")
	cmd.Flags().StringVar(&recur, "recur", "", "Recurrence, e.g. weekly")
	cmd.Flags().StringVar(&untilFlag, "until", "", "End of recurrence")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Replace tags")
	cmd.Flags().StringSliceVar(&depends, "depends", nil, "Replace dependencies (task UUIDs)")
	return cmd
}

func newTaskActionCmd(opts *rootOptions, use, short, verb string, action func(ctx context.Context, a *app, id string) (models.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				task, err := action(ctx, a, args[0])
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), verb, task)
				return nil
			})
		},
	}
}
