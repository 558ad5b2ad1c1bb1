package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store/memstore"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func newBackoffice(repo *memstore.Store, cache CategoryCache) *BackofficeService {
	catalog := NewCatalogService(repo, cache, testLimits)
	orders := NewOrderService(repo, nil, nil)
	return NewBackofficeService(repo, orders, catalog, testLimits)
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDashboardAggregates(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	plenty := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 50)
	low := newMedicine(t, repo, cat.ID, "Vitamin B12", "250.50", 12)

	bo := newBackoffice(repo, nil)
	staff := mustStaff(t, admin)

	delivered := placeOrder(t, repo, alice, plenty.ID, low.ID)
	placeOrder(t, repo, alice, low.ID)
	placeOrder(t, repo, alice, low.ID)
	_, err := bo.UpdateOrderStatus(ctx, staff, delivered.Order.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	d, err := bo.Dashboard(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalUsers)
	assert.Equal(t, 3, d.TotalOrders)
	assert.Equal(t, 2, d.TotalMedicines)
	assert.True(t, decimal.RequireFromString("1050.50").Equal(d.TotalSales), d.TotalSales.String())
	assert.Len(t, d.RecentOrders, 3)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Vitamin B12", d.LowStock[0].Name)
	assert.Equal(t, 9, d.LowStock[0].Stock)

	_, err = bo.Dashboard(ctx, StaffCapability{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateMedicineValidation(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	bo := newBackoffice(repo, nil)
	staff := mustStaff(t, admin)

	valid := MedicineInput{
		Name: "Zinc", Description: "Mineral supplement", CategoryID: cat.ID,
		Price: price("120.50"), Stock: 40, Dosage: "50mg",
	}
	m, err := bo.CreateMedicine(ctx, staff, valid)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.True(t, decimal.RequireFromString("120.50").Equal(m.Price))

	cases := map[string]MedicineInput{
		"name":        {Description: "d", CategoryID: cat.ID, Price: price("1")},
		"description": {Name: "n", CategoryID: cat.ID, Price: price("1")},
		"price":       {Name: "n", Description: "d", CategoryID: cat.ID, Price: price("1.005")},
		"stock":       {Name: "n", Description: "d", CategoryID: cat.ID, Price: price("1"), Stock: -1},
		"category_id": {Name: "n", Description: "d", CategoryID: 9999, Price: price("1")},
	}
	for field, in := range cases {
		_, err := bo.CreateMedicine(ctx, staff, in)
		var ve *ValidationError
		if assert.True(t, errors.As(err, &ve), field) {
			assert.Contains(t, ve.Fields, field)
		}
	}

	negative := valid
	negative.Price = price("-1")
	_, err = bo.CreateMedicine(ctx, staff, negative)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "price")

	missing := valid
	missing.Price = nil
	_, err = bo.CreateMedicine(ctx, staff, missing)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "price")
}

func TestUpdateAndDeleteMedicine(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Vitamins")
	ordered := newMedicine(t, repo, cat.ID, "Multivitamin", "800.00", 5)
	spare := newMedicine(t, repo, cat.ID, "Iron", "90.00", 5)
	bo := newBackoffice(repo, nil)
	staff := mustStaff(t, admin)

	updated, err := bo.UpdateMedicine(ctx, staff, spare.ID, MedicineInput{
		Name: "Iron + Folic Acid", Description: "Supplement", CategoryID: cat.ID, Price: price("95"), Stock: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Iron + Folic Acid", updated.Name)
	assert.Equal(t, 7, updated.Stock)

	_, err = bo.UpdateMedicine(ctx, staff, 9999, MedicineInput{Name: "x", Description: "y", CategoryID: cat.ID, Price: price("1")})
	assert.ErrorIs(t, err, ErrNotFound)

	placeOrder(t, repo, alice, ordered.ID)
	assert.ErrorIs(t, bo.DeleteMedicine(ctx, staff, ordered.ID), ErrInUse)

	require.NoError(t, bo.DeleteMedicine(ctx, staff, spare.ID))
	assert.ErrorIs(t, bo.DeleteMedicine(ctx, staff, spare.ID), ErrNotFound)
}

type fakeCategoryCache struct {
	cached      []models.Category
	ok          bool
	invalidated int
}

func (c *fakeCategoryCache) GetCategories(ctx context.Context) ([]models.Category, bool, error) {
	return c.cached, c.ok, nil
}

func (c *fakeCategoryCache) SetCategories(ctx context.Context, categories []models.Category) error {
	c.cached, c.ok = categories, true
	return nil
}

func (c *fakeCategoryCache) InvalidateCategories(ctx context.Context) error {
	c.cached, c.ok = nil, false
	c.invalidated++
	return nil
}

func TestCategoryCrudInvalidatesCache(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	admin := newUser(t, repo, "admin", true)
	cache := &fakeCategoryCache{}
	bo := newBackoffice(repo, cache)
	staff := mustStaff(t, admin)

	c, err := bo.CreateCategory(ctx, staff, CategoryInput{Name: "First Aid"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	med := newMedicine(t, repo, c.ID, "Bandages", "50.00", 100)

	require.NoError(t, bo.DeleteCategory(ctx, staff, c.ID))
	assert.Equal(t, 2, cache.invalidated)

	_, err = repo.GetMedicine(ctx, med.ID)
	assert.Error(t, err)

	_, err = bo.CreateCategory(ctx, staff, CategoryInput{Name: ""})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestExportMedicinesWorkbook(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	admin := newUser(t, repo, "admin", true)
	cat := newCategory(t, repo, "Pain Relief")
	newMedicine(t, repo, cat.ID, "Aspirin", "100.00", 0)
	newMedicine(t, repo, cat.ID, "Paracetamol", "150.00", 20)
	bo := newBackoffice(repo, nil)

	var buf bytes.Buffer
	require.NoError(t, bo.ExportMedicines(ctx, mustStaff(t, admin), &buf))

	wb, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	sheet, ok := wb.Sheet["Medicines"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].Value)
	assert.Equal(t, "Aspirin", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "Pain Relief", sheet.Rows[1].Cells[2].Value)
	assert.Equal(t, "150.00", sheet.Rows[2].Cells[3].Value)

	assert.ErrorIs(t, bo.ExportMedicines(ctx, StaffCapability{}, &buf), ErrForbidden)
}

func TestListUsersRequiresStaff(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	admin := newUser(t, repo, "admin", true)
	newUser(t, repo, "alice", false)
	bo := newBackoffice(repo, nil)

	users, err := bo.ListUsers(ctx, mustStaff(t, admin))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = bo.ListUsers(ctx, StaffCapability{})
	assert.ErrorIs(t, err, ErrForbidden)
}
