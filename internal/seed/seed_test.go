package seed

import (
	"context"
	"testing"
	"time"

	"pharmacy-storefront/internal/service"
	"pharmacy-storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()
	auth := service.NewAuthService(repo, memstore.NewSessions(time.Hour), bcrypt.MinCost)

	res, err := Run(ctx, repo, auth, "admin123")
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 1, Categories: 6, Medicines: 12}, res)

	res, err = Run(ctx, repo, auth, "admin123")
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)

	users, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, users)

	count, err := repo.CountMedicines(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	categories, err := repo.ListCategories(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, categories, 6)
}

func TestRunCreatesStaffAdmin(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()
	auth := service.NewAuthService(repo, memstore.NewSessions(time.Hour), bcrypt.MinCost)

	_, err := Run(ctx, repo, auth, "letmein")
	require.NoError(t, err)

	sess, err := auth.Login(ctx, AdminUsername, "letmein")
	require.NoError(t, err)
	assert.True(t, sess.User.IsStaff)
}

func TestRunLinksMedicinesToCategories(t *testing.T) {
	ctx := context.Background()
	repo := memstore.New()
	auth := service.NewAuthService(repo, memstore.NewSessions(time.Hour), bcrypt.MinCost)

	_, err := Run(ctx, repo, auth, "admin123")
	require.NoError(t, err)

	m, err := repo.FindMedicineByName(ctx, "Hydrocortisone Cream")
	require.NoError(t, err)
	assert.True(t, m.RequiresPrescription)
	assert.False(t, m.Featured)
	assert.Equal(t, "320.00", m.Price.StringFixed(2))

	category, err := repo.GetCategory(ctx, m.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Skin Care", category.Name)
}
