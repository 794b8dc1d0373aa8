package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/models"
	"github.com/tmaziere/taskboard/internal/services"
	"github.com/tmaziere/taskboard/internal/session"
	"github.com/tmaziere/taskboard/internal/store"
)

// TaskHandler handles the dashboard and the per-task edit and delete
// routes. All of them sit behind session.RequireUser.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// dashboardPage is the page model for the dashboard.
type dashboardPage struct {
	Username string
	Tasks    []models.Task
}

// Dashboard renders the current user's task list.
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)

	tasks, err := h.service.List(username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to list tasks")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	render(w, "dashboard", dashboardPage{Username: username, Tasks: tasks})
}

// CreateTask adds a task from the new_task field and redirects back to the
// dashboard so a refresh cannot resubmit the form. A blank submission is a
// silent no-op.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)

	if _, err := h.service.Create(username, r.FormValue("new_task")); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to create task")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeleteTask removes a task by id. An id that does not exist (or was
// already deleted) redirects just the same.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)

	if err := h.service.Delete(username, chi.URLParam(r, "taskID")); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to delete task")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// editPage is the page model for the edit form.
type editPage struct {
	Task models.Task
}

// EditForm renders the edit form pre-filled with the task's current
// description. A task that is not the current user's silently redirects to
// the dashboard.
func (h *TaskHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)

	task, err := h.service.Get(username, chi.URLParam(r, "taskID"))
	if errors.Is(err, store.ErrTaskNotFound) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to load task")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	render(w, "edit", editPage{Task: task})
}

// UpdateTask replaces the task's description from the new_description
// field. A blank submission leaves it unchanged; a missing task silently
// redirects.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	username := session.Username(r)
	taskID := chi.URLParam(r, "taskID")

	err := h.service.Update(username, taskID, r.FormValue("new_description"))
	if err != nil && !errors.Is(err, store.ErrTaskNotFound) {
		log.Error().Err(err).Str("username", username).Str("task_id", taskID).Msg("Failed to update task")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
