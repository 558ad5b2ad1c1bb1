package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusLifecycleByStaff(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	user := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)

	placed := placeOrder(t, repo, user, med.ID)
	assert.Equal(t, 25, placed.Order.StatusPercentage())

	pub := &recordingPublisher{}
	svc := NewOrderService(repo, pub, PermissiveTransitions{})

	order, err := svc.UpdateStatus(ctx, mustStaff(t, admin), placed.Order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, 100, order.StatusPercentage())

	detail, err := svc.Get(ctx, user, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, detail.Order.Status)

	require.Len(t, pub.changed, 1)
	assert.Equal(t, models.OrderStatusPending, pub.changed[0].From)
	assert.Equal(t, models.OrderStatusDelivered, pub.changed[0].To)

	// Same status again is a no-op.
	_, err = svc.UpdateStatus(ctx, mustStaff(t, admin), placed.Order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Len(t, pub.changed, 1)
}

func TestOrderPrivacy(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	bob := newUser(t, repo, "bob", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)

	placed := placeOrder(t, repo, alice, med.ID)
	svc := NewOrderService(repo, nil, nil)

	_, err := svc.Get(ctx, bob, placed.Order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, Actor{}, placed.Order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	detail, err := svc.Get(ctx, admin, placed.Order.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Items, 1)

	_, err = svc.Confirmation(ctx, admin, placed.Order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Confirmation(ctx, alice, placed.Order.ID)
	assert.NoError(t, err)

	orders, err := svc.ListForUser(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestOrderListNewestFirst(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 10)

	first := placeOrder(t, repo, alice, med.ID)
	time.Sleep(2 * time.Millisecond)
	second := placeOrder(t, repo, alice, med.ID)

	orders, err := NewOrderService(repo, nil, nil).ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.Order.ID, orders[0].ID)
	assert.Equal(t, first.Order.ID, orders[1].ID)
}

func TestUpdateStatusRequiresCapability(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)
	placed := placeOrder(t, repo, alice, med.ID)

	svc := NewOrderService(repo, nil, nil)

	_, err := svc.UpdateStatus(ctx, StaffCapability{}, placed.Order.ID, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = RequireStaff(alice)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = RequireStaff(Actor{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	order, _ := repo.GetOrder(ctx, placed.Order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)
	placed := placeOrder(t, repo, alice, med.ID)

	svc := NewOrderService(repo, nil, nil)
	_, err := svc.UpdateStatus(ctx, mustStaff(t, admin), placed.Order.ID, "refunded")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = svc.UpdateStatus(ctx, mustStaff(t, admin), 424242, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStrictTransitions(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)
	placed := placeOrder(t, repo, alice, med.ID)

	svc := NewOrderService(repo, nil, StrictTransitions{})
	staff := mustStaff(t, admin)

	_, err := svc.UpdateStatus(ctx, staff, placed.Order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, next := range []string{models.OrderStatusConfirmed, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err = svc.UpdateStatus(ctx, staff, placed.Order.ID, next)
		require.NoError(t, err, next)
	}

	_, err = svc.UpdateStatus(ctx, staff, placed.Order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStrictTransitionEdges(t *testing.T) {
	p := StrictTransitions{}
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.Allow(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, PermissiveTransitions{}.Allow(models.OrderStatusCancelled, models.OrderStatusPending))
}

func TestOrderDetailIncludesTimeline(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 3)
	placed := placeOrder(t, repo, alice, med.ID)

	_, err := repo.AppendTimelineEntry(ctx, &models.OrderTimelineEntry{
		OrderID: placed.Order.ID, EventID: "evt-1", EventType: models.EventTypeOrderPlaced,
		Status: models.OrderStatusPending, OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	detail, err := NewOrderService(repo, nil, nil).Get(ctx, alice, placed.Order.ID)
	require.NoError(t, err)
	require.Len(t, detail.Timeline, 1)
	assert.Equal(t, "evt-1", detail.Timeline[0].EventID)
}

func TestListAllFiltersByStatus(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	med := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 5)

	a := placeOrder(t, repo, alice, med.ID)
	placeOrder(t, repo, alice, med.ID)

	svc := NewOrderService(repo, nil, nil)
	staff := mustStaff(t, admin)
	_, err := svc.UpdateStatus(ctx, staff, a.Order.ID, models.OrderStatusShipped)
	require.NoError(t, err)

	all, err := svc.ListAll(ctx, staff, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	shipped, err := svc.ListAll(ctx, staff, models.OrderStatusShipped)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	assert.Equal(t, a.Order.ID, shipped[0].ID)

	_, err = svc.ListAll(ctx, staff, "lost")
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}
