package service

import (
	"context"
	"errors"
	"fmt"

	"pharmacy-storefront/config"
	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BackofficeService is the staff-only surface. Every method takes the
// StaffCapability returned by RequireStaff.
type BackofficeService struct {
	repo    store.Repository
	orders  *OrderService
	catalog *CatalogService
	limits  config.BusinessConfig
	logger  *zap.Logger
}

// NewBackofficeService creates a new back-office service
func NewBackofficeService(repo store.Repository, orders *OrderService, catalog *CatalogService, limits config.BusinessConfig) *BackofficeService {
	return &BackofficeService{
		repo:    repo,
		orders:  orders,
		catalog: catalog,
		limits:  limits,
		logger:  util.GetLogger(),
	}
}

type Dashboard struct {
	TotalUsers     int
	TotalOrders    int
	TotalMedicines int
	TotalSales     decimal.Decimal
	RecentOrders   []models.Order
	LowStock       []models.Medicine
}

// Dashboard aggregates counts, realized sales (delivered orders), recent orders and low stock
func (s *BackofficeService) Dashboard(ctx context.Context, staff StaffCapability) (*Dashboard, error) {
	ctx, span := util.StartSpan(ctx, "BackofficeService.Dashboard")
	defer span.End()

	if err := staff.check(); err != nil {
		return nil, err
	}

	var (
		d   Dashboard
		err error
	)
	if d.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if d.TotalOrders, err = s.repo.CountOrders(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if d.TotalMedicines, err = s.repo.CountMedicines(ctx); err != nil {
		return nil, fmt.Errorf("failed to count medicines: %w", err)
	}
	if d.TotalSales, err = s.repo.SumOrderTotals(ctx, models.OrderStatusDelivered); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.repo.ListOrders(ctx, store.OrderFilter{Limit: s.limits.RecentOrdersLimit}); err != nil {
		return nil, err
	}
	if d.LowStock, err = s.repo.ListMedicines(ctx, store.MedicineFilter{
		StockBelow: s.limits.LowStockThreshold,
		Limit:      s.limits.LowStockLimit,
	}); err != nil {
		return nil, err
	}
	return &d, nil
}

// MedicineInput is the add/edit medicine form
type MedicineInput struct {
	Name                 string           `json:"name" validate:"required,max=200"`
	Description          string           `json:"description" validate:"required"`
	CategoryID           int64            `json:"category_id" validate:"required,gt=0"`
	Price                *decimal.Decimal `json:"price" validate:"required"`
	Stock                int              `json:"stock" validate:"gte=0"`
	Image                string           `json:"image" validate:"max=500"`
	RequiresPrescription bool             `json:"requires_prescription"`
	Dosage               string           `json:"dosage" validate:"max=100"`
	Manufacturer         string           `json:"manufacturer" validate:"max=200"`
	Featured             bool             `json:"featured"`
}

func (s *BackofficeService) medicineFromInput(ctx context.Context, in MedicineInput) (*models.Medicine, error) {
	trim(&in.Name, &in.Description, &in.Image, &in.Dosage, &in.Manufacturer)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	price, err := ParsePrice(in.Price.String())
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewValidationError("category_id", "Select a valid choice. That choice is not one of the available choices.")
		}
		return nil, err
	}

	return &models.Medicine{
		Name:                 in.Name,
		Description:          in.Description,
		CategoryID:           in.CategoryID,
		Price:                price,
		Stock:                in.Stock,
		Image:                in.Image,
		RequiresPrescription: in.RequiresPrescription,
		Dosage:               in.Dosage,
		Manufacturer:         in.Manufacturer,
		Featured:             in.Featured,
	}, nil
}

func (s *BackofficeService) ListMedicines(ctx context.Context, staff StaffCapability) ([]models.Medicine, error) {
	if err := staff.check(); err != nil {
		return nil, err
	}
	return s.repo.ListMedicines(ctx, store.MedicineFilter{})
}

func (s *BackofficeService) GetMedicine(ctx context.Context, staff StaffCapability, id int64) (*models.Medicine, error) {
	if err := staff.check(); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMedicine(ctx, id)
	return m, fromStore(err)
}

func (s *BackofficeService) CreateMedicine(ctx context.Context, staff StaffCapability, in MedicineInput) (*models.Medicine, error) {
	ctx, span := util.StartSpan(ctx, "BackofficeService.CreateMedicine")
	defer span.End()

	if err := staff.check(); err != nil {
		return nil, err
	}
	m, err := s.medicineFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMedicine(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	s.logger.Info("Medicine created",
		zap.Int64("medicine_id", m.ID),
		zap.String("name", m.Name),
		zap.Int64("staff_id", staff.Actor().UserID))
	return m, nil
}

// UpdateMedicine replaces every editable field. Stock set here is a plain
// overwrite; concurrent checkouts may still be holding the row lock.
func (s *BackofficeService) UpdateMedicine(ctx context.Context, staff StaffCapability, id int64, in MedicineInput) (*models.Medicine, error) {
	ctx, span := util.StartSpan(ctx, "BackofficeService.UpdateMedicine")
	defer span.End()

	if err := staff.check(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetMedicine(ctx, id); err != nil {
		return nil, fromStore(err)
	}
	m, err := s.medicineFromInput(ctx, in)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.repo.UpdateMedicine(ctx, m); err != nil {
		return nil, fromStore(err)
	}

	s.logger.Info("Medicine updated", zap.Int64("medicine_id", id), zap.Int64("staff_id", staff.Actor().UserID))
	return m, nil
}

func (s *BackofficeService) DeleteMedicine(ctx context.Context, staff StaffCapability, id int64) error {
	ctx, span := util.StartSpan(ctx, "BackofficeService.DeleteMedicine")
	defer span.End()

	if err := staff.check(); err != nil {
		return err
	}
	if err := s.repo.DeleteMedicine(ctx, id); err != nil {
		return fromStore(err)
	}
	s.logger.Info("Medicine deleted", zap.Int64("medicine_id", id), zap.Int64("staff_id", staff.Actor().UserID))
	return nil
}

// CategoryInput is the add category form
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"max=500"`
}

func (s *BackofficeService) ListCategories(ctx context.Context, staff StaffCapability) ([]models.Category, error) {
	if err := staff.check(); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, 0)
}

func (s *BackofficeService) CreateCategory(ctx context.Context, staff StaffCapability, in CategoryInput) (*models.Category, error) {
	if err := staff.check(); err != nil {
		return nil, err
	}
	trim(&in.Name, &in.Description, &in.Image)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	c := &models.Category{Name: in.Name, Description: in.Description, Image: in.Image}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.catalog.InvalidateCategories(ctx)

	s.logger.Info("Category created", zap.Int64("category_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// DeleteCategory removes a category together with its medicines
func (s *BackofficeService) DeleteCategory(ctx context.Context, staff StaffCapability, id int64) error {
	if err := staff.check(); err != nil {
		return err
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fromStore(err)
	}
	s.catalog.InvalidateCategories(ctx)

	s.logger.Info("Category deleted", zap.Int64("category_id", id), zap.Int64("staff_id", staff.Actor().UserID))
	return nil
}

func (s *BackofficeService) ListOrders(ctx context.Context, staff StaffCapability, status string) ([]models.Order, error) {
	return s.orders.ListAll(ctx, staff, status)
}

func (s *BackofficeService) UpdateOrderStatus(ctx context.Context, staff StaffCapability, id int64, status string) (*models.Order, error) {
	return s.orders.UpdateStatus(ctx, staff, id, status)
}

func (s *BackofficeService) ListUsers(ctx context.Context, staff StaffCapability) ([]models.User, error) {
	if err := staff.check(); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}
