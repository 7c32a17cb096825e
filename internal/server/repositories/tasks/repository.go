package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository stores tasks. Every lookup and mutation is scoped by owner id;
// a task that exists but belongs to someone else is reported as
// common.ErrorNotFound, same as a missing one.
type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByOwnerAndID(ctx context.Context, ownerID, id int64) (*models.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Toggle(ctx context.Context, ownerID, id int64) (*models.Task, error)
}
