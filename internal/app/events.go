package app

import (
	"context"
	"log/slog"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// PublishingCategoryRepository announces successful category writes on the
// configured exchange. Reads pass straight through. A failed publish is
// logged and never fails the write, which has already happened upstream.
type PublishingCategoryRepository struct {
	CategoryRepository

	publisher EventPublisher
	exchange  string
	logger    *slog.Logger
}

// NewPublishingCategoryRepository wraps repo with event publishing.
func NewPublishingCategoryRepository(repo CategoryRepository, publisher EventPublisher, exchange string, logger *slog.Logger) *PublishingCategoryRepository {
	return &PublishingCategoryRepository{
		CategoryRepository: repo,
		publisher:          publisher,
		exchange:           exchange,
		logger:             logger,
	}
}

func (r *PublishingCategoryRepository) Create(ctx context.Context, input domain.CategoryInput) (*domain.Category, error) {
	category, err := r.CategoryRepository.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, domain.EventCategoryCreated, *category)
	return category, nil
}

func (r *PublishingCategoryRepository) Update(ctx context.Context, id string, input domain.CategoryInput) (*domain.Category, error) {
	category, err := r.CategoryRepository.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, domain.EventCategoryUpdated, *category)
	return category, nil
}

func (r *PublishingCategoryRepository) Delete(ctx context.Context, id string) (*domain.Category, error) {
	category, err := r.CategoryRepository.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	r.publish(ctx, domain.EventCategoryDeleted, *category)
	return category, nil
}

func (r *PublishingCategoryRepository) publish(ctx context.Context, eventType string, category domain.Category) {
	event := domain.NewCategoryEvent(eventType, category)
	// The request may be cancelled once the response is written.
	if err := r.publisher.Publish(context.WithoutCancel(ctx), r.exchange, eventType, event); err != nil {
		r.logger.WarnContext(ctx, "failed to publish category event",
			"event_type", eventType, "event_id", event.EventID, "category_id", category.ID, "error", err)
		return
	}
	r.logger.DebugContext(ctx, "published category event", "event_type", eventType, "event_id", event.EventID)
}
