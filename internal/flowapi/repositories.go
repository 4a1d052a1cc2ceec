package flowapi

import (
	"context"
	"time"

	"github.com/benvon/flow/internal/models"
)

// TimeRecordRepositoryInterface defines the time record operations the tracker depends on
type TimeRecordRepositoryInterface interface {
	List(ctx context.Context) ([]models.TimeRecord, error)
	Start(ctx context.Context) (models.TimeRecord, error)
	Stop(ctx context.Context) (models.TimeRecord, error)
	Delete(ctx context.Context, id string) (models.TimeRecord, error)
	Tag(ctx context.Context, id, tag string) (models.TimeRecord, error)
	Untag(ctx context.Context, id, tag string) (models.TimeRecord, error)
	ModifyDates(ctx context.Context, id string, start, end *time.Time) (models.TimeRecord, error)
}

// TaskRepositoryInterface defines the task operations
type TaskRepositoryInterface interface {
	List(ctx context.Context, filter *models.TaskFilter) ([]models.Task, error)
	RecentTags(ctx context.Context) ([]string, error)
	RecentProjects(ctx context.Context) ([]string, error)
	Create(ctx context.Context, description string, due *time.Time, project, priority *string) (models.Task, error)
	MarkDone(ctx context.Context, id string) (models.Task, error)
	Edit(ctx context.Context, id string, edit models.TaskEdit) (models.Task, error)
	Delete(ctx context.Context, id string) (models.Task, error)
	Start(ctx context.Context, id string) (models.Task, error)
	Stop(ctx context.Context, id string) (models.Task, error)
}

// AuthRepositoryInterface defines the account operations
type AuthRepositoryInterface interface {
	SignIn(ctx context.Context, username, password string) (models.AuthResult, error)
	SignUp(ctx context.Context, username, password string) (models.AuthResult, error)
	SignOut(ctx context.Context) (bool, error)
	Me(ctx context.Context) (models.User, error)
	SetTimewHook(ctx context.Context, enabled bool) (bool, error)
}

var (
	_ TimeRecordRepositoryInterface = (*TimeRecordRepository)(nil)
	_ TaskRepositoryInterface       = (*TaskRepository)(nil)
	_ AuthRepositoryInterface       = (*AuthRepository)(nil)
)
