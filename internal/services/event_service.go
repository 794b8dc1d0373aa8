package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/models"
	"github.com/tmaziere/taskboard/internal/store"
)

// EventServiceProvider defines the interface for activity-event services.
type EventServiceProvider interface {
	Record(eventType, level, message string, username *string)
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService keeps a best-effort activity log of account and task
// actions.
type EventService struct {
	store store.Store
}

// NewEventService creates a new EventService.
func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

// Record logs a new event. The activity log is advisory: a failed write is
// logged and otherwise ignored so it never breaks the action it describes.
func (s *EventService) Record(eventType, level, message string, username *string) {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		Username:  username,
		CreatedAt: time.Now(),
	}

	if err := s.store.InsertEvent(event); err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

// GetRecentEvents retrieves the most recent events, newest first.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	return s.store.RecentEvents(limit)
}
