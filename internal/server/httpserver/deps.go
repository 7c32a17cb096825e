package httpserver

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// Sessions issues and resolves login sessions.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Resolve(ctx context.Context, token string) models.Identity
	Logout(ctx context.Context, token string)
}

// Users registers accounts.
type Users interface {
	Register(ctx context.Context, r services.Registration) (*models.User, error)
}

// Tasks is the owner-scoped task engine.
type Tasks interface {
	Overview(ctx context.Context, id models.Identity, filter models.Filter, order models.Sort) (*services.TaskOverview, error)
	List(ctx context.Context, id models.Identity, filter models.Filter, order models.Sort) ([]*models.Task, error)
	Get(ctx context.Context, id models.Identity, taskID int64) (*models.Task, error)
	Create(ctx context.Context, id models.Identity, in services.TaskInput) (*models.Task, error)
	Edit(ctx context.Context, id models.Identity, taskID int64, in services.TaskInput, completed bool) (*models.Task, error)
	Delete(ctx context.Context, id models.Identity, taskID int64) error
	Toggle(ctx context.Context, id models.Identity, taskID int64) (*models.Task, error)
}

// Exporter uploads task exports.
type Exporter interface {
	Export(ctx context.Context, id models.Identity) (string, error)
}

// HealthChecker reports database reachability.
type HealthChecker interface {
	Check(ctx context.Context) error
}
