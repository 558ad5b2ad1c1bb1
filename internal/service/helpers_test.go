package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testLimits = config.BusinessConfig{
	LowStockThreshold: 10,
	LowStockLimit:     5,
	RecentOrdersLimit: 5,
	HomeCategoryLimit: 6,
	FeaturedLimit:     8,
	RelatedLimit:      4,
}

type recordingPublisher struct {
	mu      sync.Mutex
	err     error
	placed  []*models.OrderPlacedEvent
	changed []*models.OrderStatusChangedEvent
}

func (p *recordingPublisher) PublishOrderPlaced(ctx context.Context, e *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return p.err
}

var errPublish = errors.New("broker unavailable")

func newUser(t *testing.T, repo *memstore.Store, username string, staff bool) Actor {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", PasswordHash: "x", IsStaff: staff}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return ActorFor(u)
}

func newCategory(t *testing.T, repo *memstore.Store, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	require.NoError(t, repo.CreateCategory(context.Background(), c))
	return c
}

func newMedicine(t *testing.T, repo *memstore.Store, categoryID int64, name, price string, stock int) *models.Medicine {
	t.Helper()
	m := &models.Medicine{
		Name:        name,
		Description: name + " tablets",
		CategoryID:  categoryID,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	require.NoError(t, repo.CreateMedicine(context.Background(), m))
	return m
}

func setStock(t *testing.T, repo *memstore.Store, id int64, stock int) {
	t.Helper()
	ctx := context.Background()
	m, err := repo.GetMedicine(ctx, id)
	require.NoError(t, err)
	m.Stock = stock
	require.NoError(t, repo.UpdateMedicine(ctx, m))
}

func setPrice(t *testing.T, repo *memstore.Store, id int64, price string) {
	t.Helper()
	ctx := context.Background()
	m, err := repo.GetMedicine(ctx, id)
	require.NoError(t, err)
	m.Price = decimal.RequireFromString(price)
	require.NoError(t, repo.UpdateMedicine(ctx, m))
}

func validCheckout() CheckoutInput {
	return CheckoutInput{ShippingAddress: "12 Harbour Road, Mombasa", Phone: "+254700000000"}
}

// placeOrder adds each medicine once and checks out.
func placeOrder(t *testing.T, repo *memstore.Store, actor Actor, medicineIDs ...int64) *PlacedOrder {
	t.Helper()
	ctx := context.Background()
	cart := NewCartService(repo)
	for _, id := range medicineIDs {
		_, err := cart.Add(ctx, actor, id, 1)
		require.NoError(t, err)
	}
	placed, err := NewCheckoutService(repo, nil).PlaceOrder(ctx, actor, validCheckout())
	require.NoError(t, err)
	return placed
}

func mustStaff(t *testing.T, a Actor) StaffCapability {
	t.Helper()
	c, err := RequireStaff(a)
	require.NoError(t, err)
	return c
}
