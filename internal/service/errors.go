package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"pharmacy-storefront/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrUnauthorized      = errors.New("authentication required")
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInUse is returned when deleting catalog rows that existing orders reference.
	ErrInUse = errors.New("referenced by existing orders")

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", ErrUnauthorized)
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// OutOfStockError rejects a single cart mutation.
type OutOfStockError struct {
	MedicineID int64
	Name       string
	Available  int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("Sorry, only %d units of %s are available.", e.Available, e.Name)
}

// StockShortfall is one cart line that asks for more than is in stock.
type StockShortfall struct {
	MedicineID int64  `json:"medicine_id"`
	Name       string `json:"name"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

func (s StockShortfall) String() string {
	return fmt.Sprintf("%s (requested: %d, available: %d)", s.Name, s.Requested, s.Available)
}

// InsufficientStockError is the checkout pre-check result listing every shortfall.
type InsufficientStockError struct {
	Lines []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = l.String()
	}
	return fmt.Sprintf("Insufficient stock for: %s. Please update your cart.", strings.Join(parts, ", "))
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StockConflictError aborts the checkout transaction at the first line whose
// locked stock no longer covers the requested quantity.
type StockConflictError struct {
	StockShortfall
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.Name)
}

func (e *StockConflictError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// fromStore maps repository sentinels onto service errors.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrInUse
	}
	return err
}
