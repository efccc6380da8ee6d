package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for category change events.
const (
	EventCategoryCreated = "category.created"
	EventCategoryUpdated = "category.updated"
	EventCategoryDeleted = "category.deleted"
)

// CategoryEvent is published after a category write succeeds upstream.
type CategoryEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Category   Category  `json:"category"`
}

// NewCategoryEvent stamps a new event for the given category.
func NewCategoryEvent(eventType string, category Category) CategoryEvent {
	return CategoryEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Category:   category,
	}
}
