package service

import (
	"context"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
)

// EventPublisher announces committed order changes. Publishing is best-effort:
// failures are logged by callers and never undo the change.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// CategoryCache holds the category list, which carries no stock.
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]models.Category, bool, error)
	SetCategories(ctx context.Context, categories []models.Category) error
	InvalidateCategories(ctx context.Context) error
}

// SessionStore maps opaque tokens to user ids with a sliding expiry.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	util.GetLogger().Debug("Kafka disabled, dropping event",
		zap.String("event_type", event.EventType),
		zap.Int64("order_id", event.OrderID))
	return nil
}

func (NoopPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	util.GetLogger().Debug("Kafka disabled, dropping event",
		zap.String("event_type", event.EventType),
		zap.Int64("order_id", event.OrderID))
	return nil
}
