package store

import (
	"context"
	"fmt"

	"pharmacy-storefront/internal/models"
)

// AppendTimelineEntry records an order event once per event_id
func (s *Store) AppendTimelineEntry(ctx context.Context, e *models.OrderTimelineEntry) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO order_timeline (order_id, event_id, event_type, status, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`,
		e.OrderID, e.EventID, e.EventType, e.Status, e.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("failed to append timeline entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListTimeline returns an order's events oldest first
func (s *Store) ListTimeline(ctx context.Context, orderID int64) ([]models.OrderTimelineEntry, error) {
	entries := []models.OrderTimelineEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, order_id, event_id, event_type, status, occurred_at
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY occurred_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return entries, nil
}
