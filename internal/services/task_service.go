package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/models"
	"github.com/tmaziere/taskboard/internal/store"
	"github.com/tmaziere/taskboard/internal/websocket"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	List(username string) ([]models.Task, error)
	Get(username, taskID string) (models.Task, error)
	Create(username, description string) (*models.Task, error)
	Update(username, taskID, newDescription string) error
	Delete(username, taskID string) error
}

// TaskService provides business logic for a user's task list. Every
// operation is scoped by the owning username; callers must already have
// proven identity via the session manager.
type TaskService struct {
	store    store.Store
	hub      *websocket.Hub
	eventSvc EventServiceProvider
}

// NewTaskService creates a new TaskService.
func NewTaskService(st store.Store, hub *websocket.Hub, eventSvc EventServiceProvider) *TaskService {
	return &TaskService{store: st, hub: hub, eventSvc: eventSvc}
}

// List returns the user's tasks in creation order.
func (s *TaskService) List(username string) ([]models.Task, error) {
	return s.store.ListTasks(username)
}

// Get retrieves a single task owned by the user, or store.ErrTaskNotFound.
func (s *TaskService) Get(username, taskID string) (models.Task, error) {
	return s.store.GetTask(username, taskID)
}

// Create appends a new task to the end of the user's list. A blank
// description is silently ignored and returns (nil, nil), mirroring how
// the dashboard form treats an empty submission.
func (s *TaskService) Create(username, description string) (*models.Task, error) {
	if description == "" {
		return nil, nil
	}

	task := models.Task{
		ID:          uuid.New().String(),
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertTask(username, task); err != nil {
		return nil, err
	}

	s.eventSvc.Record("task.create", "info", fmt.Sprintf("Task %s created.", task.ID), &username)
	s.notify(username, "task.created", task)
	return &task, nil
}

// Update replaces a task's description in place, preserving its id and
// position. A blank newDescription is a successful no-op; an unknown id
// fails with store.ErrTaskNotFound.
func (s *TaskService) Update(username, taskID, newDescription string) error {
	if newDescription == "" {
		// Blank edit submission leaves the description unchanged, but the
		// task must still exist.
		_, err := s.store.GetTask(username, taskID)
		return err
	}

	if err := s.store.UpdateTask(username, taskID, newDescription); err != nil {
		return err
	}

	s.eventSvc.Record("task.update", "info", fmt.Sprintf("Task %s updated.", taskID), &username)
	s.notify(username, "task.updated", models.Task{ID: taskID, Description: newDescription})
	return nil
}

// Delete removes the task with the given id. Deleting an absent task is
// idempotent and silent.
func (s *TaskService) Delete(username, taskID string) error {
	if _, err := s.store.GetTask(username, taskID); err != nil {
		// Already gone: nothing to do, nothing to announce.
		return nil
	}

	if err := s.store.DeleteTask(username, taskID); err != nil {
		return err
	}

	s.eventSvc.Record("task.delete", "info", fmt.Sprintf("Task %s deleted.", taskID), &username)
	s.notify(username, "task.deleted", models.Task{ID: taskID})
	return nil
}

// notify pushes a task event to the user's connected dashboards.
func (s *TaskService) notify(username, action string, payload interface{}) {
	if s.hub == nil {
		return
	}
	message, err := json.Marshal(websocket.Message{Action: action, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to marshal websocket message")
		return
	}
	s.hub.BroadcastTo(username, message)
}
