package flowapi

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/flow/internal/graphql"
	"github.com/benvon/flow/internal/models"
)

type taskData struct {
	ID          string   `json:"id"`
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Entry       string   `json:"entry"`
	Modified    string   `json:"modified"`
	Status      string   `json:"status"`
	Urgency     float64  `json:"urgency"`
	Priority    string   `json:"priority"`
	Due         string   `json:"due"`
	Project     string   `json:"project"`
	Tags        []string `json:"tags"`
	Depends     []string `json:"depends"`
	Parent      string   `json:"parent"`
	Recur       string   `json:"recur"`
	Until       string   `json:"until"`
	Start       string   `json:"start"`
}

// TaskRepository handles task operations against the backend
type TaskRepository struct {
	exec graphql.Executor
	loc  *time.Location
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(exec graphql.Executor, loc *time.Location) *TaskRepository {
	if loc == nil {
		loc = time.Local
	}
	return &TaskRepository{exec: exec, loc: loc}
}

// List fetches tasks matching filter, or pending tasks when filter is nil.
// Placeholder tasks with ID "0" are dropped.
func (r *TaskRepository) List(ctx context.Context, filter *models.TaskFilter) ([]models.Task, error) {
	if filter == nil {
		f := models.DefaultTaskFilter()
		filter = &f
	}

	data, err := r.exec.Execute(ctx, opTasks, map[string]any{"filter": filterVars(*filter)})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	var out struct {
		Tasks []taskData `json:"tasks"`
	}
	if err := graphql.Decode(data, &out); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(out.Tasks))
	for _, d := range out.Tasks {
		task, err := toTask(d, r.loc)
		if err != nil {
			return nil, err
		}
		if !task.HasID() {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// RecentTags returns recently used task tags
func (r *TaskRepository) RecentTags(ctx context.Context) ([]string, error) {
	return r.strings(ctx, opRecentTaskTags, "recentTaskTags")
}

// RecentProjects returns recently used task projects
func (r *TaskRepository) RecentProjects(ctx context.Context) ([]string, error) {
	return r.strings(ctx, opRecentTaskProjects, "recentTaskProjects")
}

// Create adds a new task
func (r *TaskRepository) Create(ctx context.Context, description string, due *time.Time, project, priority *string) (models.Task, error) {
	vars := map[string]any{"description": description}
	if due != nil {
		vars["due"] = FormatTimestamp(*due)
	}
	if project != nil {
		vars["project"] = *project
	}
	if priority != nil {
		vars["priority"] = *priority
	}
	return r.mutate(ctx, opCreateTask, "createTask", vars, ErrTaskNotCreated)
}

// MarkDone completes a task
func (r *TaskRepository) MarkDone(ctx context.Context, id string) (models.Task, error) {
	return r.mutate(ctx, opMarkTaskDone, "markTaskDone", map[string]any{"id": id}, ErrTaskNotMarkedDone)
}

// Edit applies the non-nil fields of edit to a task
func (r *TaskRepository) Edit(ctx context.Context, id string, edit models.TaskEdit) (models.Task, error) {
	vars := map[string]any{"id": id}
	if edit.Description != nil {
		vars["description"] = *edit.Description
	}
	if edit.Due != nil {
		vars["due"] = FormatTimestamp(*edit.Due)
	}
	if edit.Project != nil {
		vars["project"] = *edit.Project
	}
	if edit.Priority != nil {
		vars["priority"] = *edit.Priority
	}
	if edit.Tags != nil {
		vars["tags"] = edit.Tags
	}
	if edit.Depends != nil {
		vars["depends"] = edit.Depends
	}
	if edit.Recurring != nil {
		vars["recurring"] = *edit.Recurring
	}
	if edit.Until != nil {
		vars["until"] = FormatTimestamp(*edit.Until)
	}
	return r.mutate(ctx, opEditTask, "editTask", vars, ErrTaskNotEdited)
}

// Delete removes a task
func (r *TaskRepository) Delete(ctx context.Context, id string) (models.Task, error) {
	return r.mutate(ctx, opDeleteTask, "deleteTask", map[string]any{"id": id}, ErrTaskNotDeleted)
}

// Start marks a task as started
func (r *TaskRepository) Start(ctx context.Context, id string) (models.Task, error) {
	return r.mutate(ctx, opStartTask, "startTask", map[string]any{"id": id}, ErrTaskNotStarted)
}

// Stop marks a started task as stopped
func (r *TaskRepository) Stop(ctx context.Context, id string) (models.Task, error) {
	return r.mutate(ctx, opStopTask, "stopTask", map[string]any{"id": id}, ErrTaskNotStopped)
}

func (r *TaskRepository) strings(ctx context.Context, op graphql.Operation, field string) ([]string, error) {
	data, err := r.exec.Execute(ctx, op, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", field, err)
	}
	values := []string{}
	if _, err := decodeField(data, field, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (r *TaskRepository) mutate(ctx context.Context, op graphql.Operation, field string, vars map[string]any, notReturned error) (models.Task, error) {
	data, err := r.exec.Execute(ctx, op, vars)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to execute %s: %w", field, err)
	}

	var d taskData
	found, err := decodeField(data, field, &d)
	if err != nil {
		return models.Task{}, err
	}
	if !found {
		return models.Task{}, notReturned
	}
	return toTask(d, r.loc)
}

func filterVars(f models.TaskFilter) map[string]any {
	vars := map[string]any{
		"description": f.Description,
	}
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	vars["tags"] = tags
	if f.Status != nil {
		vars["status"] = *f.Status
	}
	if f.Project != nil {
		vars["project"] = *f.Project
	}
	if f.Priority != nil {
		vars["priority"] = *f.Priority
	}
	if f.Due != nil {
		vars["due"] = FormatTimestamp(*f.Due)
	}
	return vars
}

func toTask(d taskData, loc *time.Location) (models.Task, error) {
	due, err := ParseTimestamp(d.Due, loc)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s due: %w", d.ID, err)
	}
	until, err := ParseTimestamp(d.Until, loc)
	if err != nil {
		return models.Task{}, fmt.Errorf("task %s until: %w", d.ID, err)
	}

	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	depends := d.Depends
	if depends == nil {
		depends = []string{}
	}
	return models.Task{
		ID:          d.ID,
		UUID:        d.UUID,
		Description: d.Description,
		Entry:       d.Entry,
		Modified:    d.Modified,
		Status:      models.TaskStatus(d.Status),
		Urgency:     d.Urgency,
		Priority:    d.Priority,
		Due:         d.Due,
		Project:     d.Project,
		Tags:        tags,
		Depends:     depends,
		Parent:      d.Parent,
		Recur:       d.Recur,
		Until:       d.Until,
		Start:       d.Start,
		DueTime:     due,
		UntilTime:   until,
	}, nil
}
