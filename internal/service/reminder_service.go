package service

import (
	"context"
	"fmt"
	"time"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
)

// ReminderDateLayout is the wire format of reminder dates.
const ReminderDateLayout = "2006-01-02"

// ReminderService manages a user's refill reminders
type ReminderService struct {
	repo   store.ReminderRepository
	now    func() time.Time
	logger *zap.Logger
}

// NewReminderService creates a new reminder service. now defaults to time.Now.
func NewReminderService(repo store.ReminderRepository, now func() time.Time) *ReminderService {
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		repo:   repo,
		now:    now,
		logger: util.GetLogger(),
	}
}

// ReminderInput is the add/edit form. IsActive is ignored on add.
type ReminderInput struct {
	MedicineName string `json:"medicine_name" validate:"required,max=200"`
	Dosage       string `json:"dosage" validate:"max=100"`
	ReminderDate string `json:"reminder_date" validate:"required"`
	Notes        string `json:"notes" validate:"max=2000"`
	IsActive     *bool  `json:"is_active"`
}

func (in *ReminderInput) parse() (time.Time, error) {
	trim(&in.MedicineName, &in.Dosage, &in.ReminderDate, &in.Notes)
	if err := validateStruct(in); err != nil {
		return time.Time{}, err
	}
	date, err := time.Parse(ReminderDateLayout, in.ReminderDate)
	if err != nil {
		return time.Time{}, NewValidationError("reminder_date", "Enter a valid date.")
	}
	return date, nil
}

// Reminders is the reminders page: all active reminders and the upcoming subset.
type Reminders struct {
	Today    time.Time
	Active   []models.RefillReminder
	Upcoming []models.RefillReminder
}

// Today is the current calendar date used for is_upcoming and days_until.
func (s *ReminderService) Today() time.Time {
	return models.CivilDate(s.now())
}

// List returns the actor's active reminders and the upcoming ones
func (s *ReminderService) List(ctx context.Context, actor Actor) (*Reminders, error) {
	ctx, span := util.StartSpan(ctx, "ReminderService.List")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}

	active, err := s.repo.ListReminders(ctx, store.ReminderFilter{UserID: actor.UserID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	upcoming, err := s.ListUpcoming(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &Reminders{Today: s.Today(), Active: active, Upcoming: upcoming}, nil
}

// ListUpcoming returns active reminders dated today or later, soonest first
func (s *ReminderService) ListUpcoming(ctx context.Context, actor Actor) ([]models.RefillReminder, error) {
	if err := requireUser(actor); err != nil {
		return nil, err
	}
	upcoming, err := s.repo.ListReminders(ctx, store.ReminderFilter{
		UserID:     actor.UserID,
		ActiveOnly: true,
		From:       s.Today(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming reminders: %w", err)
	}
	return upcoming, nil
}

func (s *ReminderService) Add(ctx context.Context, actor Actor, in ReminderInput) (*models.RefillReminder, error) {
	ctx, span := util.StartSpan(ctx, "ReminderService.Add")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	date, err := in.parse()
	if err != nil {
		return nil, err
	}

	r := &models.RefillReminder{
		UserID:       actor.UserID,
		MedicineName: in.MedicineName,
		Dosage:       in.Dosage,
		ReminderDate: date,
		Notes:        in.Notes,
		IsActive:     true,
	}
	if err := s.repo.CreateReminder(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Debug("Reminder added", zap.Int64("reminder_id", r.ID), zap.Int64("user_id", actor.UserID))
	return r, nil
}

func (s *ReminderService) Update(ctx context.Context, actor Actor, id int64, in ReminderInput) (*models.RefillReminder, error) {
	ctx, span := util.StartSpan(ctx, "ReminderService.Update")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return nil, err
	}
	r, err := s.repo.GetReminder(ctx, actor.UserID, id)
	if err != nil {
		return nil, fromStore(err)
	}
	date, err := in.parse()
	if err != nil {
		return nil, err
	}

	r.MedicineName = in.MedicineName
	r.Dosage = in.Dosage
	r.ReminderDate = date
	r.Notes = in.Notes
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return nil, fromStore(err)
	}
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, actor Actor, id int64) error {
	ctx, span := util.StartSpan(ctx, "ReminderService.Delete")
	defer span.End()

	if err := requireUser(actor); err != nil {
		return err
	}
	return fromStore(s.repo.DeleteReminder(ctx, actor.UserID, id))
}
