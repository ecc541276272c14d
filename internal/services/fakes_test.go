package services

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- in-memory store shared by the fake repositories ---

type fakeStore struct {
	mu     sync.Mutex
	users  map[int64]models.User
	tasks  map[int64]models.Task
	nextID int64
	clock  time.Time

	// failNext makes the next write (create, update, delete) fail with this error
	failNext error

	// failReads makes every read fail with this error
	failReads error

	// failTaskList makes only task listing fail
	failTaskList error

	calls        int
	ownerLookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[int64]models.User{},
		tasks: map[int64]models.Task{},
		clock: time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) writeErr() error {
	s.calls++
	err := s.failNext
	s.failNext = nil
	return err
}

// tasksOf returns the stored tasks of userID ordered by id.
func (s *fakeStore) tasksOf(userID int64) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Task
	for _, t := range s.tasks {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeUsersRepo struct{ s *fakeStore }

func (r *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.writeErr(); err != nil {
		return nil, err
	}
	for _, existing := range r.s.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrDuplicateUsername
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return u, nil
}

func (r *fakeUsersRepo) GetByUserName(_ context.Context, name string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failReads != nil {
		return nil, r.s.failReads
	}
	for _, u := range r.s.users {
		if u.UserName == name {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failReads != nil {
		return nil, r.s.failReads
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUsersRepo) List(context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failReads != nil {
		return nil, r.s.failReads
	}
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUsersRepo) CountAdmins(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failReads != nil {
		return 0, r.s.failReads
	}
	n := 0
	for _, u := range r.s.users {
		if u.IsAdmin {
			n++
		}
	}
	return n, nil
}

type fakeTasksRepo struct{ s *fakeStore }

func (r *fakeTasksRepo) ListByUser(_ context.Context, userID int64) ([]models.Task, error) {
	if r.s.failReads != nil {
		return nil, r.s.failReads
	}
	if r.s.failTaskList != nil {
		return nil, r.s.failTaskList
	}
	return r.s.tasksOf(userID), nil
}

func (r *fakeTasksRepo) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.writeErr(); err != nil {
		return nil, err
	}
	t.ID = r.s.id()
	t.CreatedAt = r.s.tick()
	r.s.tasks[t.ID] = t.Clone()
	return t, nil
}

func (r *fakeTasksRepo) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.writeErr(); err != nil {
		return err
	}
	cur, ok := r.s.tasks[t.ID]
	if !ok || cur.UserID != t.UserID {
		return common.ErrNotFound
	}
	r.s.tasks[t.ID] = t.Clone()
	return nil
}

func (r *fakeTasksRepo) Delete(_ context.Context, userID, taskID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.writeErr(); err != nil {
		return err
	}
	cur, ok := r.s.tasks[taskID]
	if !ok || cur.UserID != userID {
		return common.ErrNotFound
	}
	delete(r.s.tasks, taskID)
	return nil
}

func (r *fakeTasksRepo) Owner(_ context.Context, taskID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.ownerLookups++
	if r.s.failReads != nil {
		return 0, r.s.failReads
	}
	t, ok := r.s.tasks[taskID]
	if !ok {
		return 0, common.ErrNotFound
	}
	return t.UserID, nil
}

type fakeRepoManager struct{ s *fakeStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return &fakeUsersRepo{m.s} }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasksrepo.Repository          { return &fakeTasksRepo{m.s} }

// errDBDown looks like a refused TCP dial; errRejected is the store turning
// a statement down while the connection is fine.
var (
	errDBDown   = &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	errRejected = &pgconn.PgError{Code: "23514", Message: "new row violates check constraint"}
)
