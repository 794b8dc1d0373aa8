package store

import (
	"sync"
	"time"

	"github.com/tmaziere/taskboard/internal/models"
)

// Memory is the default backend: process-wide maps that live for the
// process lifetime and are discarded on restart. A single RWMutex
// serializes mutations so concurrent requests cannot interleave task-list
// updates; reads take the read lock and return copies.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]models.User
	tasks  map[string][]models.Task
	events []models.Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]models.User),
		tasks: make(map[string][]models.Task),
	}
}

func (m *Memory) CreateUser(username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return ErrUsernameTaken
	}
	m.users[username] = models.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.tasks[username] = []models.Task{}
	return nil
}

func (m *Memory) PasswordHash(username string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok {
		return "", ErrUnknownUser
	}
	return user.PasswordHash, nil
}

func (m *Memory) UserExists(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.users[username]
	return ok, nil
}

func (m *Memory) ListTasks(username string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]models.Task, len(m.tasks[username]))
	copy(tasks, m.tasks[username])
	return tasks, nil
}

func (m *Memory) GetTask(username, taskID string) (models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, task := range m.tasks[username] {
		if task.ID == taskID {
			return task, nil
		}
	}
	return models.Task{}, ErrTaskNotFound
}

func (m *Memory) InsertTask(username string, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[username] = append(m.tasks[username], task)
	return nil
}

func (m *Memory) UpdateTask(username, taskID, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.tasks[username]
	for i := range tasks {
		if tasks[i].ID == taskID {
			tasks[i].Description = description
			return nil
		}
	}
	return ErrTaskNotFound
}

func (m *Memory) DeleteTask(username, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := m.tasks[username]
	for i := range tasks {
		if tasks[i].ID == taskID {
			m.tasks[username] = append(tasks[:i], tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) InsertEvent(event models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

func (m *Memory) RecentEvents(limit int) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Most recent first.
	var events []models.Event
	for i := len(m.events) - 1; i >= 0 && len(events) < limit; i-- {
		events = append(events, m.events[i])
	}
	return events, nil
}

func (m *Memory) PruneEvents(olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	for _, event := range m.events {
		if !event.CreatedAt.Before(olderThan) {
			kept = append(kept, event)
		}
	}
	pruned := len(m.events) - len(kept)
	m.events = kept
	return pruned, nil
}

func (m *Memory) Counts() (int, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := 0
	for _, list := range m.tasks {
		tasks += len(list)
	}
	return len(m.users), tasks, nil
}

func (m *Memory) Close() error { return nil }
