package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacy-storefront/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(repo *memstore.Store) *AuthService {
	return NewAuthService(repo, memstore.NewSessions(time.Hour), bcrypt.MinCost)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		FirstName:       "Alice",
		LastName:        "Wanjiru",
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
	}
}

func TestRegisterLogsIn(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	auth := newAuth(repo)

	sess, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.False(t, sess.User.IsStaff)
	assert.NotEqual(t, "s3cret-pass", sess.User.PasswordHash)

	user, err := auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRegisterValidation(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	auth := newAuth(repo)

	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	cases := map[string]func(in *RegisterInput){
		"username": func(in *RegisterInput) {},
		"email":    func(in *RegisterInput) { in.Username = "bob"; in.Email = "not-an-email" },
		"password_confirm": func(in *RegisterInput) {
			in.Username = "bob"
			in.PasswordConfirm = "different-pass"
		},
		"password": func(in *RegisterInput) {
			in.Username = "bob"
			in.Password, in.PasswordConfirm = "12345678", "12345678"
		},
	}
	for field, mutate := range cases {
		in := validRegistration()
		mutate(&in)
		_, err := auth.Register(ctx, in)
		var ve *ValidationError
		if assert.True(t, errors.As(err, &ve), field) {
			assert.Contains(t, ve.Fields, field)
		}
	}

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLogin(t *testing.T) {
	repo := memstore.New()
	ctx := context.Background()
	auth := newAuth(repo)

	_, err := auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	sess, err := auth.Login(ctx, " alice ", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, sess.Token))
	_, err = auth.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("0123"))
	assert.False(t, isNumeric(""))
	assert.False(t, isNumeric("12a4"))
}
