package service

import (
	"context"
	"fmt"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderRepository interface {
	store.OrderRepository
	store.TimelineRepository
}

// TransitionPolicy decides which status changes staff may make.
type TransitionPolicy interface {
	Allow(from, to string) bool
}

// PermissiveTransitions lets any status become any other.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allow(from, to string) bool { return true }

// StrictTransitions follows pending -> confirmed -> shipped -> delivered,
// with cancellation possible before shipping.
type StrictTransitions struct{}

var strictEdges = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
}

func (StrictTransitions) Allow(from, to string) bool {
	for _, next := range strictEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService handles order lookup and staff status changes
type OrderService struct {
	repo      orderRepository
	publisher EventPublisher
	policy    TransitionPolicy
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo orderRepository, publisher EventPublisher, policy TransitionPolicy) *OrderService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if policy == nil {
		policy = PermissiveTransitions{}
	}
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		logger:    util.GetLogger(),
	}
}

// OrderDetail is an order with its items and tracking history
type OrderDetail struct {
	Order    *models.Order
	Items    []models.OrderItem
	Timeline []models.OrderTimelineEntry
}

// ListForUser returns the actor's own orders, newest first
func (s *OrderService) ListForUser(ctx context.Context, actor Actor) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListForUser")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, store.OrderFilter{UserID: actor.UserID})
}

// Get returns an order the actor owns, or any order for staff. Orders of
// other users are reported as not found.
func (s *OrderService) Get(ctx context.Context, actor Actor, id int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Get")
	defer span.End()

	order, err := s.visibleOrder(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

// Confirmation is shown right after checkout and only to the buyer.
func (s *OrderService) Confirmation(ctx context.Context, actor Actor, id int64) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Confirmation")
	defer span.End()

	order, err := s.visibleOrder(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

func (s *OrderService) visibleOrder(ctx context.Context, actor Actor, id int64, staffSees bool) (*models.Order, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	if order.UserID != actor.UserID && !(staffSees && actor.IsStaff) {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) detail(ctx context.Context, order *models.Order) (*OrderDetail, error) {
	items, err := s.repo.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	timeline, err := s.repo.ListTimeline(ctx, order.ID)
	if err != nil {
		// Tracking history is informational only.
		s.logger.Warn("Failed to load order timeline", zap.Int64("order_id", order.ID), zap.Error(err))
		timeline = nil
	}

	return &OrderDetail{Order: order, Items: items, Timeline: timeline}, nil
}

// ListAll lists every order for the back-office, optionally by status
func (s *OrderService) ListAll(ctx context.Context, staff StaffCapability, status string) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListAll")
	defer span.End()

	if err := staff.check(); err != nil {
		return nil, err
	}
	if status != "" && !models.IsValidOrderStatus(status) {
		return nil, NewValidationError("status", "Select a valid choice.")
	}
	return s.repo.ListOrders(ctx, store.OrderFilter{Status: status})
}

// UpdateStatus sets a new status on an order. Setting the current status is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, staff StaffCapability, id int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if err := staff.check(); err != nil {
		return nil, err
	}
	if !models.IsValidOrderStatus(status) {
		return nil, NewValidationError("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", status))
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}

	from := order.Status
	if from == status {
		return order, nil
	}
	if !s.policy.Allow(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, fromStore(err)
	}
	order.Status = status

	util.OrderStatusChangesTotal.WithLabelValues(status).Inc()
	s.logger.Info("Order status updated",
		zap.Int64("order_id", id),
		zap.String("from", from),
		zap.String("to", status),
		zap.Int64("staff_id", staff.Actor().UserID))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: id,
		UserID:  order.UserID,
		From:    from,
		To:      status,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Int64("order_id", id), zap.Error(err))
	}

	return order, nil
}
