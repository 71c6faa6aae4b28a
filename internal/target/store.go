package target

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound marks a lookup of a task that does not exist.
var ErrNotFound = errors.New("task not found")

const DefaultStatus = "pending"

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskUpdate is a typed partial update. Only non-nil fields change;
// the updatable set is fixed, never assembled at runtime.
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

type TaskStore interface {
	List(ctx context.Context, status string, limit, offset int) ([]Task, error)
	Create(ctx context.Context, title, description, status string) (Task, error)
	Get(ctx context.Context, id int) (Task, error)
	Update(ctx context.Context, id int, upd TaskUpdate) (Task, error)
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
	Close()
}

// MemoryStore keeps tasks in process memory. Default for the demo and
// for tests; the Postgres store backs real deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	tasks  map[int]Task
	nextID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:  make(map[int]Task),
		nextID: 1,
	}
}

func (s *MemoryStore) List(ctx context.Context, status string, limit, offset int) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if status != "" && t.Status != status {
			continue
		}
		all = append(all, t)
	}

	// Newest first, matching the SQL ordering.
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Task{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *MemoryStore) Create(ctx context.Context, title, description, status string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t := Task{
		ID:          s.nextID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.tasks[t.ID] = t
	return t, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int, upd TaskUpdate) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	t.UpdatedAt = time.Now()

	s.tasks[id] = t
	return t, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() {}
