package worker

import (
	"context"

	"pharmacy-storefront/internal/broker"
	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
)

// TimelineWorker turns order events into order timeline entries
type TimelineWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	timeline     store.TimelineRepository
	logger       *zap.Logger
}

// NewTimelineWorker creates a new timeline worker
func NewTimelineWorker(consumer *broker.Consumer, timeline store.TimelineRepository) *TimelineWorker {
	w := &TimelineWorker{
		consumer: consumer,
		timeline: timeline,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.HandleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.HandleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *TimelineWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting timeline worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *TimelineWorker) Stop() error {
	w.logger.Info("Stopping timeline worker")
	return w.consumer.Close()
}

func (w *TimelineWorker) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return w.append(ctx, &models.OrderTimelineEntry{
		OrderID:    event.OrderID,
		EventID:    event.EventID,
		EventType:  event.EventType,
		Status:     models.OrderStatusPending,
		OccurredAt: event.Timestamp,
	})
}

func (w *TimelineWorker) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return w.append(ctx, &models.OrderTimelineEntry{
		OrderID:    event.OrderID,
		EventID:    event.EventID,
		EventType:  event.EventType,
		Status:     event.To,
		OccurredAt: event.Timestamp,
	})
}

// append records entry once; redelivered events are skipped
func (w *TimelineWorker) append(ctx context.Context, entry *models.OrderTimelineEntry) error {
	ctx, span := util.StartSpan(ctx, "TimelineWorker.append")
	defer span.End()

	inserted, err := w.timeline.AppendTimelineEntry(ctx, entry)
	if err != nil {
		return err
	}
	if !inserted {
		w.logger.Debug("Duplicate event skipped", zap.String("event_id", entry.EventID))
		return nil
	}

	w.logger.Info("Timeline entry recorded",
		zap.Int64("order_id", entry.OrderID),
		zap.String("status", entry.Status))
	return nil
}
