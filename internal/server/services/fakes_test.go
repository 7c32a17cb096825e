package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// txDB returns a real database handle so dbx.WithTx can begin and commit;
// the fake repositories below ignore the handle they are bound to.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// --- users ---

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User

	// failWith, when set, is returned by every method.
	failWith error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[int64]*models.User{}}
}

func (r *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.nextID++
	cp := *u
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	u.ID, u.CreatedAt = cp.ID, cp.CreatedAt
	return u, nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.byID {
		if u.UserName == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	for _, u := range r.byID {
		if u.UserName == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// --- tasks ---

type memTasks struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*models.Task
	clock   func() time.Time
	inserts int

	failWith error
}

func newMemTasks() *memTasks {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return &memTasks{
		byID: map[int64]*models.Task{},
		clock: func() time.Time {
			n++
			return base.Add(time.Duration(n) * time.Second)
		},
	}
}

func cloneTask(t *models.Task) *models.Task {
	cp := *t
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	return &cp
}

func (r *memTasks) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.inserts++
	r.nextID++
	t.ID = r.nextID
	t.CreatedAt = r.clock()
	r.byID[t.ID] = cloneTask(t)
	return t, nil
}

func (r *memTasks) GetByOwnerAndID(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return cloneTask(t), nil
}

func (r *memTasks) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]*models.Task, 0)
	for _, t := range r.byID {
		if t.OwnerID == ownerID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memTasks) Update(ctx context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	cur, ok := r.byID[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return nil, common.ErrorNotFound
	}
	cur.Title, cur.Description, cur.Completed = t.Title, t.Description, t.Completed
	cur.DueDate = cloneTask(t).DueDate
	return cloneTask(cur), nil
}

func (r *memTasks) Delete(ctx context.Context, ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memTasks) Toggle(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	t, ok := r.byID[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	t.Completed = !t.Completed
	return cloneTask(t), nil
}

// --- manager ---

type fakeRepoManager struct {
	u users.Repository
	t tasks.Repository
}

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository          { return m.t }
