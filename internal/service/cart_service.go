package service

import (
	"context"
	"errors"
	"fmt"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartRepository interface {
	store.CatalogRepository
	store.CartRepository
}

// CartService manages the per-user cart
type CartService struct {
	repo   cartRepository
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(repo cartRepository) *CartService {
	return &CartService{
		repo:   repo,
		logger: util.GetLogger(),
	}
}

// CartView is the cart priced at current medicine prices
type CartView struct {
	Lines []models.CartLine
	Total decimal.Decimal
}

// View returns every line with the cart total
func (s *CartService) View(ctx context.Context, actor Actor) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.View")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}

	lines, err := s.repo.ListCartLines(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &CartView{Lines: lines, Total: models.CartTotal(lines)}, nil
}

// Add increases the line for medicineID by delta, creating it if needed.
// The resulting quantity may not exceed the medicine's current stock.
func (s *CartService) Add(ctx context.Context, actor Actor, medicineID int64, delta int) (*models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Add")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	if delta < 1 {
		return nil, NewValidationError("quantity", "Ensure this value is greater than or equal to 1.")
	}

	medicine, err := s.repo.GetMedicine(ctx, medicineID)
	if err != nil {
		return nil, fromStore(err)
	}

	line, err := s.repo.FindCartLine(ctx, actor.UserID, medicineID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to load cart line: %w", err)
	}

	current := 0
	if line != nil {
		current = line.Quantity
	}
	if current+delta > medicine.Stock {
		util.CartOperationsTotal.WithLabelValues("add", "out_of_stock").Inc()
		return nil, &OutOfStockError{MedicineID: medicine.ID, Name: medicine.Name, Available: medicine.Stock}
	}

	if line == nil {
		line = &models.CartLine{UserID: actor.UserID, MedicineID: medicineID, Quantity: delta}
		err = s.repo.CreateCartLine(ctx, line)
		if errors.Is(err, store.ErrConflict) {
			// A concurrent request created the line first; fold into it.
			return s.Add(ctx, actor, medicineID, delta)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create cart line: %w", err)
		}
	} else {
		line.Quantity = current + delta
		if err := s.repo.UpdateCartLineQuantity(ctx, line.ID, line.Quantity); err != nil {
			return nil, fromStore(err)
		}
	}

	line.Medicine = *medicine
	util.CartOperationsTotal.WithLabelValues("add", "ok").Inc()
	s.logger.Debug("Cart line added",
		zap.Int64("user_id", actor.UserID),
		zap.Int64("medicine_id", medicineID),
		zap.Int("quantity", line.Quantity))
	return line, nil
}

// SetQuantity overwrites a line's quantity. quantity <= 0 removes the line and
// returns a nil line. The line is left unchanged when stock is insufficient.
func (s *CartService) SetQuantity(ctx context.Context, actor Actor, lineID int64, quantity int) (*models.CartLine, error) {
	ctx, span := util.StartSpan(ctx, "CartService.SetQuantity")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}

	line, err := s.repo.GetCartLine(ctx, actor.UserID, lineID)
	if err != nil {
		return nil, fromStore(err)
	}

	if quantity <= 0 {
		if err := s.repo.DeleteCartLine(ctx, actor.UserID, lineID); err != nil {
			return nil, fromStore(err)
		}
		util.CartOperationsTotal.WithLabelValues("set", "removed").Inc()
		return nil, nil
	}

	if quantity > line.Medicine.Stock {
		util.CartOperationsTotal.WithLabelValues("set", "out_of_stock").Inc()
		return nil, &OutOfStockError{MedicineID: line.MedicineID, Name: line.Medicine.Name, Available: line.Medicine.Stock}
	}

	if err := s.repo.UpdateCartLineQuantity(ctx, lineID, quantity); err != nil {
		return nil, fromStore(err)
	}
	line.Quantity = quantity
	util.CartOperationsTotal.WithLabelValues("set", "ok").Inc()
	return line, nil
}

// Remove deletes a line regardless of stock
func (s *CartService) Remove(ctx context.Context, actor Actor, lineID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.Remove")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return err
	}
	if err := s.repo.DeleteCartLine(ctx, actor.UserID, lineID); err != nil {
		return fromStore(err)
	}
	util.CartOperationsTotal.WithLabelValues("remove", "ok").Inc()
	return nil
}
