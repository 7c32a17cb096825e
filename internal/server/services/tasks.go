package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

// TaskOverview is a filtered, sorted listing plus counts over the owner's
// whole task set.
type TaskOverview struct {
	Tasks  []*models.Task
	Filter models.Filter
	Sort   models.Sort
	Counts models.TaskCounts
}

// TaskService is the owner-scoped task engine. Every method first passes
// the caller's identity through RequireAuthenticated; the owner id always
// comes from the identity, never from input.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	loc         *time.Location
	now         func() time.Time
	log         logging.Logger
}

// NewTaskService constructs a TaskService. Due dates are read in loc.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, loc *time.Location, l logging.Logger) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{db: db, repomanager: m, loc: loc, now: time.Now, log: l.With("module", "tasks")}
}

func (s *TaskService) all(ctx context.Context, id models.Identity) ([]*models.Task, error) {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Tasks(s.db).ListByOwner(ctx, owner)
	if err != nil {
		return nil, storageErr(err)
	}
	return list, nil
}

// List returns the owner's tasks matching filter in the requested order.
func (s *TaskService) List(ctx context.Context, id models.Identity, filter models.Filter, order models.Sort) ([]*models.Task, error) {
	list, err := s.all(ctx, id)
	if err != nil {
		return nil, err
	}
	return sortTasks(filterTasks(list, filter, s.now()), order), nil
}

// Counts summarises the owner's full task set.
func (s *TaskService) Counts(ctx context.Context, id models.Identity) (models.TaskCounts, error) {
	list, err := s.all(ctx, id)
	if err != nil {
		return models.TaskCounts{}, err
	}
	return countTasks(list), nil
}

// Overview is List and Counts over a single read of the task set.
func (s *TaskService) Overview(ctx context.Context, id models.Identity, filter models.Filter, order models.Sort) (*TaskOverview, error) {
	list, err := s.all(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskOverview{
		Tasks:  sortTasks(filterTasks(list, filter, s.now()), order),
		Filter: filter,
		Sort:   order,
		Counts: countTasks(list),
	}, nil
}

// Get returns one of the owner's tasks.
func (s *TaskService) Get(ctx context.Context, id models.Identity, taskID int64) (*models.Task, error) {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return nil, err
	}
	task, err := s.repomanager.Tasks(s.db).GetByOwnerAndID(ctx, owner, taskID)
	if err != nil {
		return nil, storageErr(err)
	}
	return task, nil
}

// Create validates the input and stores a new pending task.
func (s *TaskService) Create(ctx context.Context, id models.Identity, in TaskInput) (*models.Task, error) {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return nil, err
	}

	v, err := ValidateTaskInput(in, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{
		OwnerID:     owner,
		Title:       v.Title,
		Description: v.Description,
		DueDate:     v.DueDate,
	})
	if err != nil {
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "task created", "user_id", owner, "task_id", task.ID)
	return task, nil
}

// Edit overwrites title, description, due date and completion of an owned
// task. Ownership is checked before validation.
func (s *TaskService) Edit(ctx context.Context, id models.Identity, taskID int64, in TaskInput, completed bool) (*models.Task, error) {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return nil, err
	}

	task, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.Task, error) {
		repo := s.repomanager.Tasks(tx)

		task, err := repo.GetByOwnerAndID(ctx, owner, taskID)
		if err != nil {
			return nil, err
		}

		v, err := ValidateTaskInput(in, s.now(), s.loc)
		if err != nil {
			return nil, err
		}

		task.Title = v.Title
		task.Description = v.Description
		task.DueDate = v.DueDate
		task.Completed = completed
		return repo.Update(ctx, task)
	})
	if err != nil {
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "task updated", "user_id", owner, "task_id", taskID)
	return task, nil
}

// Delete removes an owned task permanently.
func (s *TaskService) Delete(ctx context.Context, id models.Identity, taskID int64) error {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return err
	}
	if err := s.repomanager.Tasks(s.db).Delete(ctx, owner, taskID); err != nil {
		return storageErr(err)
	}
	s.log.Info(ctx, "task deleted", "user_id", owner, "task_id", taskID)
	return nil
}

// Toggle flips the completion flag of an owned task.
func (s *TaskService) Toggle(ctx context.Context, id models.Identity, taskID int64) (*models.Task, error) {
	owner, err := RequireAuthenticated(id)
	if err != nil {
		return nil, err
	}
	task, err := s.repomanager.Tasks(s.db).Toggle(ctx, owner, taskID)
	if err != nil {
		return nil, storageErr(err)
	}
	return task, nil
}

func filterTasks(list []*models.Task, f models.Filter, now time.Time) []*models.Task {
	out := make([]*models.Task, 0, len(list))
	for _, t := range list {
		switch f {
		case models.FilterPending:
			if t.Completed {
				continue
			}
		case models.FilterCompleted:
			if !t.Completed {
				continue
			}
		case models.FilterOverdue:
			if !t.IsOverdue(now) {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// sortTasks orders list in place. Ties fall back to id descending so the
// result is deterministic.
func sortTasks(list []*models.Task, order models.Sort) []*models.Task {
	byIDDesc := func(a, b *models.Task) bool { return a.ID > b.ID }

	var less func(a, b *models.Task) bool
	switch order {
	case models.SortDate:
		less = func(a, b *models.Task) bool {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return byIDDesc(a, b)
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			case !a.DueDate.Equal(*b.DueDate):
				return a.DueDate.Before(*b.DueDate)
			}
			return byIDDesc(a, b)
		}
	case models.SortTitle:
		less = func(a, b *models.Task) bool {
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return at < bt
			}
			return byIDDesc(a, b)
		}
	default:
		less = func(a, b *models.Task) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return byIDDesc(a, b)
		}
	}

	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
	return list
}

func countTasks(list []*models.Task) models.TaskCounts {
	c := models.TaskCounts{Total: len(list)}
	for _, t := range list {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}
