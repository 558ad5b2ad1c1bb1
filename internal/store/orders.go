package store

import (
	"context"
	"fmt"

	"pharmacy-storefront/internal/models"

	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, total_amount, status, shipping_address, phone, notes, created_at, updated_at`

// ListOrders retrieves orders newest first
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var w whereBuilder
	if filter.UserID > 0 {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}

	query := "SELECT " + orderColumns + " FROM orders" + w.String() + " ORDER BY created_at DESC, id DESC"
	args := w.args
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	query = s.db.Rebind(query)

	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

// ListOrderItems retrieves all items for an order with the medicine name
func (s *Store) ListOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.medicine_id, m.name AS medicine_name, oi.quantity, oi.price
		FROM order_items oi
		JOIN medicines m ON m.id = oi.medicine_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
		status, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (s *Store) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM orders")
	return n, err
}

// SumOrderTotals adds up total_amount for orders in the given status
func (s *Store) SumOrderTotals(ctx context.Context, status string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := s.db.GetContext(ctx, &sum,
		"SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1", status)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum orders: %w", err)
	}
	return sum, nil
}
