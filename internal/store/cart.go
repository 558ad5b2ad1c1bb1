package store

import (
	"context"
	"fmt"
	"strings"

	"pharmacy-storefront/internal/models"

	"github.com/jmoiron/sqlx"
)

// cartLineSelect joins each line with its medicine so totals use current prices.
var cartLineSelect = `
	SELECT c.id, c.user_id, c.medicine_id, c.quantity, c.created_at, c.updated_at, ` +
	prefixedColumns("m", "medicine", medicineColumns) + `
	FROM cart_lines c
	JOIN medicines m ON m.id = c.medicine_id`

// prefixedColumns aliases table columns as "prefix.column" for nested struct scanning.
func prefixedColumns(table, prefix, columns string) string {
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		col := strings.TrimSpace(p)
		out = append(out, fmt.Sprintf(`%s.%s AS "%s.%s"`, table, col, prefix, col))
	}
	return strings.Join(out, ", ")
}

func listCartLines(ctx context.Context, q sqlx.QueryerContext, userID int64) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := sqlx.SelectContext(ctx, q, &lines,
		cartLineSelect+" WHERE c.user_id = $1 ORDER BY c.created_at, c.id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	return lines, nil
}

// ListCartLines returns a user's cart lines in insertion order
func (s *Store) ListCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	return listCartLines(ctx, s.db, userID)
}

// GetCartLine retrieves a line only if it belongs to userID
func (s *Store) GetCartLine(ctx context.Context, userID, lineID int64) (*models.CartLine, error) {
	var line models.CartLine
	err := s.db.GetContext(ctx, &line,
		cartLineSelect+" WHERE c.id = $1 AND c.user_id = $2", lineID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &line, nil
}

// FindCartLine retrieves the line for (userID, medicineID)
func (s *Store) FindCartLine(ctx context.Context, userID, medicineID int64) (*models.CartLine, error) {
	var line models.CartLine
	err := s.db.GetContext(ctx, &line,
		cartLineSelect+" WHERE c.user_id = $1 AND c.medicine_id = $2", userID, medicineID)
	if err != nil {
		return nil, notFound(err)
	}
	return &line, nil
}

// CreateCartLine inserts a line; a second line for the same medicine is a conflict
func (s *Store) CreateCartLine(ctx context.Context, line *models.CartLine) error {
	query := `
		INSERT INTO cart_lines (user_id, medicine_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, line.UserID, line.MedicineID, line.Quantity).
		Scan(&line.ID, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return conflict(err)
	}
	return nil
}

// UpdateCartLineQuantity sets the quantity of a line
func (s *Store) UpdateCartLineQuantity(ctx context.Context, lineID int64, quantity int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE cart_lines SET quantity = $1, updated_at = NOW() WHERE id = $2",
		quantity, lineID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteCartLine removes a line only if it belongs to userID
func (s *Store) DeleteCartLine(ctx context.Context, userID, lineID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_lines WHERE id = $1 AND user_id = $2", lineID, userID)
	if err != nil {
		return err
	}
	return requireRows(res)
}
