package store

import (
	"context"
	"fmt"

	"pharmacy-storefront/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// txStore is the Tx handed to InTx callbacks.
type txStore struct {
	tx *sqlx.Tx
}

func (t *txStore) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return listCartLines(ctx, t.tx, userID)
}

// LockMedicines reads the given medicines with FOR UPDATE. Rows are locked in
// ascending id order so concurrent checkouts cannot deadlock.
func (t *txStore) LockMedicines(ctx context.Context, ids []int64) (map[int64]models.Medicine, error) {
	result := make(map[int64]models.Medicine, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var medicines []models.Medicine
	err := t.tx.SelectContext(ctx, &medicines,
		"SELECT "+medicineColumns+" FROM medicines WHERE id = ANY($1) ORDER BY id FOR UPDATE",
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to lock medicines: %w", err)
	}

	for _, m := range medicines {
		result[m.ID] = m
	}
	return result, nil
}

func (t *txStore) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, total_amount, status, shipping_address, phone, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := t.tx.QueryRowxContext(ctx, query,
		order.UserID, order.TotalAmount, order.Status, order.ShippingAddress, order.Phone, order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (t *txStore) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, medicine_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	if err := t.tx.GetContext(ctx, &item.ID, query,
		item.OrderID, item.MedicineID, item.Quantity, item.Price); err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

// DecrementStock subtracts quantity from a medicine locked earlier in the transaction
func (t *txStore) DecrementStock(ctx context.Context, medicineID int64, quantity int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE medicines SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
		quantity, medicineID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	return requireRows(res)
}

func (t *txStore) ClearCart(ctx context.Context, userID int64) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM cart_lines WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
