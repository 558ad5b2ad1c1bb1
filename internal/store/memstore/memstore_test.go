package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMedicine(t *testing.T, s *Store, name string, stock int) (*models.Category, *models.Medicine) {
	t.Helper()
	ctx := context.Background()

	c := &models.Category{Name: "Pain Relief"}
	require.NoError(t, s.CreateCategory(ctx, c))

	m := &models.Medicine{Name: name, CategoryID: c.ID, Price: decimal.RequireFromString("5.00"), Stock: stock}
	require.NoError(t, s.CreateMedicine(ctx, m))
	return c, m
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, m := seedMedicine(t, s, "Paracetamol", 10)

	err := s.InTx(ctx, func(tx store.Tx) error {
		return tx.DecrementStock(ctx, m.ID, 4)
	})
	require.NoError(t, err)

	got, err := s.GetMedicine(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)
}

func TestInTxDiscardsOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, m := seedMedicine(t, s, "Paracetamol", 10)

	user := &models.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateCartLine(ctx, &models.CartLine{UserID: user.ID, MedicineID: m.ID, Quantity: 2}))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx store.Tx) error {
		order := &models.Order{UserID: user.ID, Status: models.OrderStatusPending}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.DecrementStock(ctx, m.ID, 2); err != nil {
			return err
		}
		if err := tx.ClearCart(ctx, user.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.GetMedicine(ctx, m.ID)
	assert.Equal(t, 10, got.Stock)

	n, _ := s.CountOrders(ctx)
	assert.Zero(t, n)

	lines, _ := s.ListCartLines(ctx, user.ID)
	assert.Len(t, lines, 1)
}

func TestCartLineJoinsCurrentMedicine(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, m := seedMedicine(t, s, "Ibuprofen", 10)

	user := &models.User{Username: "bob"}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NoError(t, s.CreateCartLine(ctx, &models.CartLine{UserID: user.ID, MedicineID: m.ID, Quantity: 1}))

	m.Price = decimal.RequireFromString("7.25")
	require.NoError(t, s.UpdateMedicine(ctx, m))

	lines, err := s.ListCartLines(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, decimal.RequireFromString("7.25").Equal(lines[0].Medicine.Price))

	dup := &models.CartLine{UserID: user.ID, MedicineID: m.ID, Quantity: 1}
	assert.ErrorIs(t, s.CreateCartLine(ctx, dup), store.ErrConflict)
}

func TestDeleteCategoryCascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, m := seedMedicine(t, s, "Aspirin", 3)

	require.NoError(t, s.DeleteCategory(ctx, c.ID))

	_, err := s.GetMedicine(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCategory(ctx, c.ID), store.ErrNotFound)
}

func TestOrderedMedicineIsProtected(t *testing.T) {
	s := New()
	ctx := context.Background()
	c, m := seedMedicine(t, s, "Aspirin", 3)

	require.NoError(t, s.InTx(ctx, func(tx store.Tx) error {
		o := &models.Order{UserID: 1, Status: models.OrderStatusPending}
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		return tx.CreateOrderItem(ctx, &models.OrderItem{OrderID: o.ID, MedicineID: m.ID, Quantity: 1, Price: m.Price})
	}))

	assert.ErrorIs(t, s.DeleteMedicine(ctx, m.ID), store.ErrConflict)
	assert.ErrorIs(t, s.DeleteCategory(ctx, c.ID), store.ErrConflict)
}

func TestListMedicinesFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	c1 := &models.Category{Name: "Vitamins"}
	c2 := &models.Category{Name: "Cold & Flu"}
	require.NoError(t, s.CreateCategory(ctx, c1))
	require.NoError(t, s.CreateCategory(ctx, c2))

	for _, m := range []*models.Medicine{
		{Name: "Vitamin C", Description: "Immune support", CategoryID: c1.ID, Stock: 100, Featured: true},
		{Name: "Vitamin D3", Description: "Bone health", CategoryID: c1.ID, Stock: 4},
		{Name: "Cough Syrup", Description: "Soothes the throat", CategoryID: c2.ID, Stock: 0, Featured: true},
	} {
		require.NoError(t, s.CreateMedicine(ctx, m))
	}

	all, _ := s.ListMedicines(ctx, store.MedicineFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, "Cough Syrup", all[0].Name)

	byCat, _ := s.ListMedicines(ctx, store.MedicineFilter{CategoryID: c1.ID})
	assert.Len(t, byCat, 2)

	featured, _ := s.ListMedicines(ctx, store.MedicineFilter{FeaturedOnly: true})
	assert.Len(t, featured, 2)

	search, _ := s.ListMedicines(ctx, store.MedicineFilter{Query: "THROAT"})
	require.Len(t, search, 1)
	assert.Equal(t, "Cough Syrup", search[0].Name)

	low, _ := s.ListMedicines(ctx, store.MedicineFilter{StockBelow: 10})
	assert.Len(t, low, 2)

	related, _ := s.ListMedicines(ctx, store.MedicineFilter{CategoryID: c1.ID, ExcludeID: byCat[0].ID, Limit: 4})
	require.Len(t, related, 1)
	assert.NotEqual(t, byCat[0].ID, related[0].ID)
}

func TestRemindersScopedToOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := &models.RefillReminder{UserID: 1, MedicineName: "Metformin", ReminderDate: time.Date(2026, 5, 1, 13, 0, 0, 0, time.UTC), IsActive: true}
	require.NoError(t, s.CreateReminder(ctx, r))
	assert.Equal(t, 0, r.ReminderDate.Hour())

	_, err := s.GetReminder(ctx, 2, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteReminder(ctx, 2, r.ID), store.ErrNotFound)

	upcoming, _ := s.ListReminders(ctx, store.ReminderFilter{UserID: 1, ActiveOnly: true, From: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)})
	assert.Len(t, upcoming, 1)

	past, _ := s.ListReminders(ctx, store.ReminderFilter{UserID: 1, From: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)})
	assert.Empty(t, past)
}

func TestUsernameUnique(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "carol"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "carol"}), store.ErrConflict)
}

func TestSessionsExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sess := NewSessions(time.Hour)
	sess.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := sess.Create(ctx, 42)
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	uid, err := sess.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	// Get slid the expiry forward.
	now = now.Add(50 * time.Minute)
	_, err = sess.Get(ctx, token)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = sess.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	token, _ = sess.Create(ctx, 7)
	require.NoError(t, sess.Delete(ctx, token))
	_, err = sess.Get(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
