package store

import (
	"context"
	"fmt"

	"pharmacy-storefront/internal/models"
)

const reminderColumns = `id, user_id, medicine_name, dosage, reminder_date, notes, is_active, created_at`

// ListReminders returns reminders ordered by date
func (s *Store) ListReminders(ctx context.Context, filter ReminderFilter) ([]models.RefillReminder, error) {
	var w whereBuilder
	if filter.UserID > 0 {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.ActiveOnly {
		w.add("is_active = TRUE")
	}
	if !filter.From.IsZero() {
		w.add("reminder_date >= ?", models.CivilDate(filter.From))
	}

	query := s.db.Rebind("SELECT " + reminderColumns + " FROM refill_reminders" + w.String() +
		" ORDER BY reminder_date, id")

	reminders := []models.RefillReminder{}
	if err := s.db.SelectContext(ctx, &reminders, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

// GetReminder retrieves a reminder only if it belongs to userID
func (s *Store) GetReminder(ctx context.Context, userID, id int64) (*models.RefillReminder, error) {
	var r models.RefillReminder
	err := s.db.GetContext(ctx, &r,
		"SELECT "+reminderColumns+" FROM refill_reminders WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) CreateReminder(ctx context.Context, r *models.RefillReminder) error {
	query := `
		INSERT INTO refill_reminders (user_id, medicine_name, dosage, reminder_date, notes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := s.db.QueryRowxContext(ctx, query,
		r.UserID, r.MedicineName, r.Dosage, models.CivilDate(r.ReminderDate), r.Notes, r.IsActive,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// UpdateReminder overwrites the editable fields; the owner never changes
func (s *Store) UpdateReminder(ctx context.Context, r *models.RefillReminder) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE refill_reminders
		SET medicine_name = $1, dosage = $2, reminder_date = $3, notes = $4, is_active = $5
		WHERE id = $6 AND user_id = $7`,
		r.MedicineName, r.Dosage, models.CivilDate(r.ReminderDate), r.Notes, r.IsActive, r.ID, r.UserID)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (s *Store) DeleteReminder(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM refill_reminders WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	return requireRows(res)
}
