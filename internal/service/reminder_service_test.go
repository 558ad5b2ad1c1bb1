package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy-storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 18, 45, 0, 0, time.UTC)
}

func TestRemindersUpcomingAndDerivedFields(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	user := newUser(t, repo, "alice", false)
	svc := NewReminderService(repo, fixedClock)

	for _, in := range []ReminderInput{
		{MedicineName: "Metformin", Dosage: "500mg", ReminderDate: "2026-04-09"},
		{MedicineName: "Amlodipine", ReminderDate: "2026-03-09"},
		{MedicineName: "Atorvastatin", ReminderDate: "2026-03-10"},
	} {
		_, err := svc.Add(ctx, user, in)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Len(t, page.Active, 3)
	assert.Equal(t, "Amlodipine", page.Active[0].MedicineName)

	require.Len(t, page.Upcoming, 2)
	assert.Equal(t, "Atorvastatin", page.Upcoming[0].MedicineName)
	assert.Equal(t, "Metformin", page.Upcoming[1].MedicineName)

	today := svc.Today()
	past := page.Active[0]
	assert.False(t, past.IsUpcoming(today))
	assert.Equal(t, -1, past.DaysUntil(today))
	assert.Equal(t, 0, page.Upcoming[0].DaysUntil(today))
	assert.Equal(t, 30, page.Upcoming[1].DaysUntil(today))
}

func TestReminderUpdateDeactivates(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	user := newUser(t, repo, "alice", false)
	svc := NewReminderService(repo, fixedClock)

	r, err := svc.Add(ctx, user, ReminderInput{MedicineName: "Metformin", ReminderDate: "2026-04-01"})
	require.NoError(t, err)
	assert.True(t, r.IsActive)

	inactive := false
	updated, err := svc.Update(ctx, user, r.ID, ReminderInput{
		MedicineName: "Metformin XR", ReminderDate: "2026-04-02", IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Metformin XR", updated.MedicineName)

	page, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, page.Active)
	assert.Empty(t, page.Upcoming)
}

func TestRemindersScopedToOwner(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	alice := newUser(t, repo, "alice", false)
	bob := newUser(t, repo, "bob", false)
	svc := NewReminderService(repo, fixedClock)

	r, err := svc.Add(ctx, alice, ReminderInput{MedicineName: "Metformin", ReminderDate: "2026-04-01"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, bob, r.ID), ErrNotFound)
	_, err = svc.Update(ctx, bob, r.ID, ReminderInput{MedicineName: "x", ReminderDate: "2026-04-01"})
	assert.ErrorIs(t, err, ErrNotFound)

	page, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, page.Active)

	require.NoError(t, svc.Delete(ctx, alice, r.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, r.ID), ErrNotFound)
}

func TestReminderValidation(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	user := newUser(t, repo, "alice", false)
	svc := NewReminderService(repo, fixedClock)

	_, err := svc.Add(ctx, user, ReminderInput{MedicineName: " ", ReminderDate: "2026-04-01"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "medicine_name")

	_, err = svc.Add(ctx, user, ReminderInput{MedicineName: "Metformin", ReminderDate: "01/04/2026"})
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "reminder_date")

	_, err = svc.Add(ctx, Actor{}, ReminderInput{MedicineName: "Metformin", ReminderDate: "2026-04-01"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
