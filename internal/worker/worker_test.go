package worker

import (
	"context"
	"testing"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *memstore.Store) *models.Order {
	t.Helper()
	order := &models.Order{UserID: 1, TotalAmount: decimal.NewFromInt(100), Status: models.OrderStatusPending}
	require.NoError(t, repo.InTx(context.Background(), func(tx store.Tx) error {
		return tx.CreateOrder(context.Background(), order)
	}))
	return order
}

func TestTimelineRecordsEvents(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	order := seedOrder(t, repo)
	w := NewTimelineWorker(nil, repo)

	placedAt := time.Now().Add(-time.Hour)
	require.NoError(t, w.HandleOrderPlaced(ctx, &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeOrderPlaced, Timestamp: placedAt},
		OrderID:   order.ID,
	}))
	require.NoError(t, w.HandleOrderStatusChanged(ctx, &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-2", EventType: models.EventTypeOrderStatusChanged, Timestamp: time.Now()},
		OrderID:   order.ID,
		From:      models.OrderStatusPending,
		To:        models.OrderStatusShipped,
	}))

	entries, err := repo.ListTimeline(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.OrderStatusPending, entries[0].Status)
	assert.Equal(t, models.OrderStatusShipped, entries[1].Status)
}

func TestTimelineSkipsRedeliveredEvents(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	order := seedOrder(t, repo)
	w := NewTimelineWorker(nil, repo)

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-1", EventType: models.EventTypeOrderPlaced, Timestamp: time.Now()},
		OrderID:   order.ID,
	}
	require.NoError(t, w.HandleOrderPlaced(ctx, event))
	require.NoError(t, w.HandleOrderPlaced(ctx, event))

	entries, err := repo.ListTimeline(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTimelineUnknownOrderFails(t *testing.T) {
	w := NewTimelineWorker(nil, memstore.New())
	err := w.HandleOrderPlaced(context.Background(), &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{EventID: "evt-9", EventType: models.EventTypeOrderPlaced},
		OrderID:   404,
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}
