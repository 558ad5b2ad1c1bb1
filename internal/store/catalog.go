package store

import (
	"context"
	"fmt"
	"strings"

	"pharmacy-storefront/internal/models"
)

const categoryColumns = `id, name, description, image, created_at`

const medicineColumns = `id, name, description, category_id, price, stock, image,
	requires_prescription, dosage, manufacturer, featured, created_at, updated_at`

// ListCategories returns categories ordered by name. limit <= 0 means all.
func (s *Store) ListCategories(ctx context.Context, limit int) ([]models.Category, error) {
	query := "SELECT " + categoryColumns + " FROM categories ORDER BY name, id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	categories := []models.Category{}
	if err := s.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.GetContext(ctx, &category,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

// CreateCategory inserts a category
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, description, image)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query, category.Name, category.Description, category.Image).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return conflict(err)
	}
	return nil
}

// DeleteCategory removes a category and, by cascade, its medicines
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return conflict(err)
	}
	return requireRows(res)
}

// ListMedicines returns medicines ordered by name
func (s *Store) ListMedicines(ctx context.Context, filter MedicineFilter) ([]models.Medicine, error) {
	var w whereBuilder
	if filter.CategoryID > 0 {
		w.add("category_id = ?", filter.CategoryID)
	}
	if filter.FeaturedOnly {
		w.add("featured = TRUE")
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		w.add(`(name ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.ExcludeID > 0 {
		w.add("id <> ?", filter.ExcludeID)
	}
	if filter.StockBelow > 0 {
		w.add("stock < ?", filter.StockBelow)
	}

	query := "SELECT " + medicineColumns + " FROM medicines" + w.String() + " ORDER BY name, id"
	args := w.args
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	query = s.db.Rebind(query)

	medicines := []models.Medicine{}
	if err := s.db.SelectContext(ctx, &medicines, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

// GetMedicine retrieves a medicine by ID
func (s *Store) GetMedicine(ctx context.Context, id int64) (*models.Medicine, error) {
	var medicine models.Medicine
	err := s.db.GetContext(ctx, &medicine,
		"SELECT "+medicineColumns+" FROM medicines WHERE id = $1", id)
	if err != nil {
		return nil, notFound(err)
	}
	return &medicine, nil
}

// FindMedicineByName is used by seeding to stay idempotent
func (s *Store) FindMedicineByName(ctx context.Context, name string) (*models.Medicine, error) {
	var medicine models.Medicine
	err := s.db.GetContext(ctx, &medicine,
		"SELECT "+medicineColumns+" FROM medicines WHERE name = $1 ORDER BY id LIMIT 1", name)
	if err != nil {
		return nil, notFound(err)
	}
	return &medicine, nil
}

// CreateMedicine inserts a medicine
func (s *Store) CreateMedicine(ctx context.Context, m *models.Medicine) error {
	query := `
		INSERT INTO medicines (name, description, category_id, price, stock, image,
			requires_prescription, dosage, manufacturer, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		m.Name, m.Description, m.CategoryID, m.Price, m.Stock, m.Image,
		m.RequiresPrescription, m.Dosage, m.Manufacturer, m.Featured,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return conflict(err)
	}
	return nil
}

// UpdateMedicine overwrites every editable field of a medicine
func (s *Store) UpdateMedicine(ctx context.Context, m *models.Medicine) error {
	query := `
		UPDATE medicines
		SET name = $1, description = $2, category_id = $3, price = $4, stock = $5, image = $6,
			requires_prescription = $7, dosage = $8, manufacturer = $9, featured = $10,
			updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		m.Name, m.Description, m.CategoryID, m.Price, m.Stock, m.Image,
		m.RequiresPrescription, m.Dosage, m.Manufacturer, m.Featured, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return conflict(notFound(err))
	}
	return nil
}

// DeleteMedicine removes a medicine. Medicines referenced by orders are kept.
func (s *Store) DeleteMedicine(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM medicines WHERE id = $1", id)
	if err != nil {
		return conflict(err)
	}
	return requireRows(res)
}

func (s *Store) CountMedicines(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM medicines")
	return n, err
}
