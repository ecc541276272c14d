package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
	"github.com/dmitrijs2005/taskkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/repositories/tasks"
)

// TaskService keeps an in-memory copy of the session user's tasks and
// answers every read from it. Mutations are written to the store first and
// reach the cache only after the store accepted them; mu is held across both
// steps, so readers never see one without the other.
type TaskService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time

	mu      sync.RWMutex
	session *Session
	cache   map[int64]models.Task
}

func NewTaskService(db dbx.DBTX, m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		log:         log,
		now:         time.Now,
	}
}

func (s *TaskService) repo() tasks.Repository {
	return s.repomanager.Tasks(s.db)
}

// LoadFor replaces the cache with the tasks owned by session's user.
// On failure the previous cache and session are kept.
func (s *TaskService) LoadFor(ctx context.Context, session *Session) error {
	if session == nil {
		return common.ErrUnauthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, session)
}

// load requires s.mu held for writing.
func (s *TaskService) load(ctx context.Context, session *Session) error {
	list, err := s.repo().ListByUser(ctx, session.UserID())
	if err != nil {
		return s.storeErr(ctx, "load tasks", session, err)
	}

	cache := make(map[int64]models.Task, len(list))
	for _, t := range list {
		cache[t.ID] = t
	}

	s.session = session
	s.cache = cache

	s.log.Debug(ctx, "tasks loaded", "session_id", session.ID, "user_id", session.UserID(), "count", len(cache))
	return nil
}

// Refresh reloads the cache of the current session from the store.
func (s *TaskService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return common.ErrUnauthenticated
	}
	return s.load(ctx, s.session)
}

// Discard drops the session and its cache.
func (s *TaskService) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	s.cache = nil
}

// Add validates in, stores it for the session user and caches the stored row.
func (s *TaskService) Add(ctx context.Context, in models.NewTask) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.Task{}, common.ErrUnauthenticated
	}

	task, err := in.Build(s.session.UserID(), s.now())
	if err != nil {
		return models.Task{}, err
	}

	created, err := s.repo().Create(ctx, &task)
	if err != nil {
		return models.Task{}, s.storeErr(ctx, "create task", s.session, err)
	}

	s.cache[created.ID] = created.Clone()
	return created.Clone(), nil
}

// Update applies the supplied fields of upd to task id. An update with no
// fields returns the task unchanged without touching the store.
func (s *TaskService) Update(ctx context.Context, id int64, upd models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return models.Task{}, common.ErrUnauthenticated
	}
	if err := upd.Validate(); err != nil {
		return models.Task{}, err
	}

	current, err := s.owned(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	next, err := upd.Apply(current)
	if err != nil {
		return models.Task{}, err
	}
	if upd.Empty() {
		return next, nil
	}

	if err := s.repo().Update(ctx, &next); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// removed from the store behind our back
			delete(s.cache, id)
		}
		return models.Task{}, s.storeErr(ctx, "update task", s.session, err)
	}

	s.cache[id] = next.Clone()
	return next, nil
}

// Complete marks task id as Completed.
func (s *TaskService) Complete(ctx context.Context, id int64) (models.Task, error) {
	return s.Update(ctx, id, models.TaskUpdate{Status: models.Some(models.StatusCompleted)})
}

// Delete removes task id from the store and then from the cache.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(ctx, id); err != nil {
		return err
	}

	if err := s.repo().Delete(ctx, s.session.UserID(), id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			delete(s.cache, id)
		}
		return s.storeErr(ctx, "delete task", s.session, err)
	}

	delete(s.cache, id)
	return nil
}

// owned returns the cached task id after checking it belongs to the session
// user. A task missing from the cache is looked up in the store only to tell
// a foreign task (PermissionDenied) from a missing one (NotFound).
// Requires s.mu held.
func (s *TaskService) owned(ctx context.Context, id int64) (models.Task, error) {
	if s.session == nil {
		return models.Task{}, common.ErrUnauthenticated
	}
	if id <= 0 {
		return models.Task{}, fmt.Errorf("%w: task id must be positive", common.ErrInvalidInput)
	}

	if t, ok := s.cache[id]; ok {
		if t.UserID != s.session.UserID() {
			return models.Task{}, common.ErrPermissionDenied
		}
		return t.Clone(), nil
	}

	owner, err := s.repo().Owner(ctx, id)
	if err != nil {
		return models.Task{}, s.storeErr(ctx, "task owner", s.session, err)
	}
	if owner != s.session.UserID() {
		s.log.Warn(ctx, "access to foreign task", "session_id", s.session.ID, "user_id", s.session.UserID(), "task_id", id)
		return models.Task{}, common.ErrPermissionDenied
	}
	return models.Task{}, common.ErrNotFound
}

// Get returns the cached task id.
func (s *TaskService) Get(id int64) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return models.Task{}, common.ErrUnauthenticated
	}
	t, ok := s.cache[id]
	if !ok {
		return models.Task{}, common.ErrNotFound
	}
	return t.Clone(), nil
}

// List returns the cached tasks matching filter in the default order.
func (s *TaskService) List(filter models.TaskFilter) ([]models.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.snapshot(filter.Match)
}

// Search returns the cached tasks whose title or description contains
// keyword, ignoring case, in the default order.
func (s *TaskService) Search(keyword string) ([]models.Task, error) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil, fmt.Errorf("%w: search keyword is empty", common.ErrInvalidInput)
	}

	return s.snapshot(func(t models.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), kw) ||
			strings.Contains(strings.ToLower(t.Description), kw)
	})
}

// Statistics aggregates the cache. It never reaches the store.
func (s *TaskService) Statistics() (models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return models.Statistics{}, common.ErrUnauthenticated
	}

	now := s.now()
	stats := models.NewStatistics()
	for _, t := range s.cache {
		stats.Add(t, now)
	}
	return stats, nil
}

// snapshot copies the matching tasks out of the cache and sorts the copy,
// so callers never share memory with the cache.
func (s *TaskService) snapshot(match func(models.Task) bool) ([]models.Task, error) {
	s.mu.RLock()
	if s.session == nil {
		s.mu.RUnlock()
		return nil, common.ErrUnauthenticated
	}

	out := make([]models.Task, 0, len(s.cache))
	for _, t := range s.cache {
		if match(t) {
			out = append(out, t.Clone())
		}
	}
	s.mu.RUnlock()

	// map order is random; fix it before the stable sort
	slices.SortFunc(out, func(a, b models.Task) int { return cmp.Compare(a.ID, b.ID) })
	mergeSort(out, taskLess)

	return out, nil
}

// storeErr keeps domain errors the store can legitimately report and
// classifies the rest with wrapStoreErr.
func (s *TaskService) storeErr(ctx context.Context, op string, session *Session, err error) error {
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrPermissionDenied) {
		return err
	}

	s.log.Error(ctx, op+" failed", "session_id", session.ID, "user_id", session.UserID(), "error", err)
	return wrapStoreErr(op, err)
}

// wrapStoreErr reports connection and timeout failures as
// ErrStoreUnavailable. Anything the store rejected on its own is returned
// wrapped with op.
func wrapStoreErr(op string, err error) error {
	if dbx.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
