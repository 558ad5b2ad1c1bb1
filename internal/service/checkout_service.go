package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type checkoutRepository interface {
	ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error)
	InTx(ctx context.Context, fn func(tx store.Tx) error) error
}

// CheckoutService turns a cart into an order.
//
// Stock is checked twice: an advisory pass over the unlocked cart that
// reports every shortfall at once, then an authoritative pass inside the
// transaction after the medicine rows are locked. Only the second pass
// guarantees stock never goes negative.
type CheckoutService struct {
	repo      checkoutRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repo checkoutRepository, publisher EventPublisher) *CheckoutService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &CheckoutService{
		repo:      repo,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CheckoutInput is the shipping and contact form
type CheckoutInput struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=1000"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// PlacedOrder is the committed order with its item snapshots
type PlacedOrder struct {
	Order models.Order
	Items []models.OrderItem
}

// Prepare runs the pre-transaction checks and returns the cart to be ordered.
func (s *CheckoutService) Prepare(ctx context.Context, actor Actor) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Prepare")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	lines, err := s.precheck(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: models.CartTotal(lines)}, nil
}

// precheck fails with ErrEmptyCart or an InsufficientStockError naming every short line.
func (s *CheckoutService) precheck(ctx context.Context, userID int64) ([]models.CartLine, error) {
	lines, err := s.repo.ListCartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var short []StockShortfall
	for _, l := range lines {
		if l.Quantity > l.Medicine.Stock {
			short = append(short, StockShortfall{
				MedicineID: l.MedicineID,
				Name:       l.Medicine.Name,
				Requested:  l.Quantity,
				Available:  l.Medicine.Stock,
			})
		}
	}
	if len(short) > 0 {
		util.StockConflictsTotal.WithLabelValues("precheck").Inc()
		return nil, &InsufficientStockError{Lines: short}
	}
	return lines, nil
}

// PlaceOrder validates the cart and input, then atomically creates the order,
// snapshots items, decrements stock and empties the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, actor Actor, input CheckoutInput) (_ *PlacedOrder, err error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
		util.CheckoutsTotal.WithLabelValues(checkoutResult(err)).Inc()
	}()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if _, err := s.precheck(ctx, actor.UserID); err != nil {
		return nil, err
	}

	trim(&input.ShippingAddress, &input.Phone, &input.Notes)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var placed *PlacedOrder
	err = s.repo.InTx(ctx, func(tx store.Tx) error {
		var txErr error
		placed, txErr = s.placeInTx(ctx, tx, actor.UserID, input)
		return txErr
	})
	if err != nil {
		var conflict *StockConflictError
		if errors.As(err, &conflict) {
			util.StockConflictsTotal.WithLabelValues("locked").Inc()
			s.logger.Warn("Checkout aborted on locked stock check",
				zap.Int64("user_id", actor.UserID),
				zap.Int64("medicine_id", conflict.MedicineID),
				zap.Int("requested", conflict.Requested),
				zap.Int("available", conflict.Available))
			return nil, err
		}
		if errors.Is(err, ErrEmptyCart) {
			return nil, err
		}
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	util.OrderRevenueTotal.Add(placed.Order.TotalAmount.InexactFloat64())
	s.logger.Info("Order placed",
		zap.Int64("order_id", placed.Order.ID),
		zap.Int64("user_id", actor.UserID),
		zap.String("total", placed.Order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(placed.Items)))

	s.publishPlaced(ctx, placed)
	return placed, nil
}

func (s *CheckoutService) placeInTx(ctx context.Context, tx store.Tx, userID int64, input CheckoutInput) (*PlacedOrder, error) {
	// Re-read inside the transaction: the cart may have changed since the pre-check.
	lines, err := tx.ListCartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	locked, err := tx.LockMedicines(ctx, medicineIDs(lines))
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, l := range lines {
		m, ok := locked[l.MedicineID]
		if !ok || l.Quantity > m.Stock {
			return nil, &StockConflictError{StockShortfall{
				MedicineID: l.MedicineID,
				Name:       l.Medicine.Name,
				Requested:  l.Quantity,
				Available:  m.Stock,
			}}
		}
		total = total.Add(m.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	order := models.Order{
		UserID:          userID,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		Phone:           input.Phone,
		Notes:           input.Notes,
	}
	if err := tx.CreateOrder(ctx, &order); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		m := locked[l.MedicineID]
		item := models.OrderItem{
			OrderID:      order.ID,
			MedicineID:   m.ID,
			MedicineName: m.Name,
			Quantity:     l.Quantity,
			Price:        m.Price,
		}
		if err := tx.CreateOrderItem(ctx, &item); err != nil {
			return nil, err
		}
		if err := tx.DecrementStock(ctx, m.ID, l.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := tx.ClearCart(ctx, userID); err != nil {
		return nil, err
	}

	return &PlacedOrder{Order: order, Items: items}, nil
}

func (s *CheckoutService) publishPlaced(ctx context.Context, placed *PlacedOrder) {
	items := make([]models.OrderItemData, len(placed.Items))
	for i, it := range placed.Items {
		items[i] = models.OrderItemData{MedicineID: it.MedicineID, Quantity: it.Quantity, Price: it.Price}
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: placed.Order.CreatedAt,
		},
		OrderID:     placed.Order.ID,
		UserID:      placed.Order.UserID,
		TotalAmount: placed.Order.TotalAmount,
		Items:       items,
	}

	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", placed.Order.ID),
			zap.Error(err))
	}
}

// medicineIDs returns the distinct ids in ascending order, the lock order.
func medicineIDs(lines []models.CartLine) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.MedicineID]; ok {
			continue
		}
		seen[l.MedicineID] = struct{}{}
		ids = append(ids, l.MedicineID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func checkoutResult(err error) string {
	var (
		ve       *ValidationError
		conflict *StockConflictError
	)
	switch {
	case err == nil:
		return util.CheckoutResultSuccess
	case errors.Is(err, ErrEmptyCart):
		return util.CheckoutResultEmptyCart
	case errors.As(err, &conflict):
		return util.CheckoutResultConflict
	case errors.Is(err, ErrInsufficientStock):
		return util.CheckoutResultInsufficient
	case errors.As(err, &ve), errors.Is(err, ErrUnauthorized):
		return util.CheckoutResultInvalid
	}
	return util.CheckoutResultError
}
