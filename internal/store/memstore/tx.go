package memstore

import (
	"context"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
)

// memTx works on a private copy of the state. The Store mutex is already held.
type memTx struct {
	state *state
	now   func() time.Time
}

func (t *memTx) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return t.state.cartLinesFor(userID), nil
}

func (t *memTx) LockMedicines(ctx context.Context, ids []int64) (map[int64]models.Medicine, error) {
	out := make(map[int64]models.Medicine, len(ids))
	for _, id := range ids {
		if m, ok := t.state.medicines[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (t *memTx) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = t.state.id()
	o.CreatedAt = t.now()
	o.UpdatedAt = o.CreatedAt
	t.state.orders[o.ID] = *o
	return nil
}

func (t *memTx) CreateOrderItem(ctx context.Context, it *models.OrderItem) error {
	if _, ok := t.state.orders[it.OrderID]; !ok {
		return store.ErrConflict
	}
	if _, ok := t.state.medicines[it.MedicineID]; !ok {
		return store.ErrConflict
	}
	it.ID = t.state.id()
	stored := *it
	stored.MedicineName = ""
	t.state.orderItems[it.ID] = stored
	return nil
}

func (t *memTx) DecrementStock(ctx context.Context, medicineID int64, quantity int) error {
	m, ok := t.state.medicines[medicineID]
	if !ok {
		return store.ErrNotFound
	}
	m.Stock -= quantity
	m.UpdatedAt = t.now()
	t.state.medicines[medicineID] = m
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, userID int64) error {
	for id, l := range t.state.cartLines {
		if l.UserID == userID {
			delete(t.state.cartLines, id)
		}
	}
	return nil
}
