package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusDeleted   TaskStatus = "deleted"
	TaskStatusWaiting   TaskStatus = "waiting"
	TaskStatusRecurring TaskStatus = "recurring"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityHigh   TaskPriority = "H"
	TaskPriorityMedium TaskPriority = "M"
	TaskPriorityLow    TaskPriority = "L"
)

// Task represents a task item
type Task struct {
	ID          string     `json:"id"`
	UUID        string     `json:"uuid"`
	Description string     `json:"description"`
	Entry       string     `json:"entry"`
	Modified    string     `json:"modified"`
	Status      TaskStatus `json:"status"`
	Urgency     float64    `json:"urgency"`
	Priority    string     `json:"priority"`
	Due         string     `json:"due"`
	Project     string     `json:"project"`
	Tags        []string   `json:"tags"`
	Depends     []string   `json:"depends"`
	Parent      string     `json:"parent"`
	Recur       string     `json:"recur"`
	Until       string     `json:"until"`
	Start       string     `json:"start"`

	DueTime   *time.Time `json:"due_time,omitempty"`
	UntilTime *time.Time `json:"until_time,omitempty"`
}

// IsStarted reports whether the task is being worked on
func (t Task) IsStarted() bool {
	return t.Start != ""
}

// HasID reports whether the backend assigned a working-set id.
// Completed and deleted tasks are reported with id "0".
func (t Task) HasID() bool {
	return t.ID != "" && t.ID != "0"
}

// TaskFilter narrows the task list
type TaskFilter struct {
	Status      *string    `json:"status,omitempty"`
	Project     *string    `json:"project,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
}

// DefaultTaskFilter returns the filter used when none is given: pending tasks only
func DefaultTaskFilter() TaskFilter {
	status := string(TaskStatusPending)
	return TaskFilter{Status: &status, Tags: []string{}}
}

// TaskEdit carries the optional fields of a task edit. Nil pointers are left untouched.
type TaskEdit struct {
	Description *string    `json:"description,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	Project     *string    `json:"project,omitempty"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,task_priority"`
	Tags        []string   `json:"tags"`
	Depends     []string   `json:"depends"`
	Recurring   *string    `json:"recurring,omitempty"`
	Until       *time.Time `json:"until,omitempty"`
}
