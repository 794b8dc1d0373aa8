package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/tmaziere/taskboard/internal/models"
)

// Domain errors surfaced by store implementations. Callers match them with
// errors.Is; everything else is an infrastructure failure.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrUnknownUser   = errors.New("unknown username")
	ErrTaskNotFound  = errors.New("task not found")
)

// Store is the persistence abstraction shared by the memory and sqlite
// backends. All task operations are scoped by the owning username; callers
// must already have proven identity.
type Store interface {
	// CreateUser stores a new credential and initializes the user's empty
	// task list. Fails with ErrUsernameTaken on an exact duplicate.
	CreateUser(username, passwordHash string) error
	// PasswordHash returns the stored hash, or ErrUnknownUser.
	PasswordHash(username string) (string, error)
	UserExists(username string) (bool, error)

	// ListTasks returns the user's tasks in creation order. Empty slice,
	// never an error, for a user with no tasks.
	ListTasks(username string) ([]models.Task, error)
	GetTask(username, taskID string) (models.Task, error)
	InsertTask(username string, task models.Task) error
	// UpdateTask replaces the description in place, preserving id and list
	// position. Fails with ErrTaskNotFound.
	UpdateTask(username, taskID, description string) error
	// DeleteTask is idempotent: deleting an absent task is a silent no-op.
	DeleteTask(username, taskID string) error

	InsertEvent(event models.Event) error
	RecentEvents(limit int) ([]models.Event, error)
	PruneEvents(olderThan time.Time) (int, error)

	// Counts reports the number of users and tasks, for housekeeping stats.
	Counts() (users, tasks int, err error)

	Close() error
}

// Open constructs a store for the configured backend.
func Open(backend, dsn string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
