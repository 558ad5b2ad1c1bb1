package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pharmacy-storefront/internal/models"
	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and session lookup
type AuthService struct {
	users      store.UserRepository
	sessions   SessionStore
	bcryptCost int
	dummyHash  []byte
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users store.UserRepository, sessions SessionStore, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown so both paths cost the same.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	return &AuthService{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		logger:     util.GetLogger(),
	}
}

// RegisterInput is the sign-up form
type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150,alphanum"`
	Email           string `json:"email" validate:"required,email,max=254"`
	FirstName       string `json:"first_name" validate:"required,max=30"`
	LastName        string `json:"last_name" validate:"required,max=30"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Session is an authenticated user with the token identifying the session
type Session struct {
	User  *models.User
	Token string
}

// Register creates a customer account and logs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	trim(&in.Username, &in.Email, &in.FirstName, &in.LastName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if isNumeric(in.Password) {
		return nil, NewValidationError("password", "This password is entirely numeric.")
	}

	user, err := s.CreateUser(ctx, &models.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return &Session{User: user, Token: token}, nil
}

// CreateUser hashes password and stores u. A taken username is a ValidationError.
func (s *AuthService) CreateUser(ctx context.Context, u *models.User, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, NewValidationError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// Login checks credentials and opens a session
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Failed login", zap.String("username", user.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Session{User: user, Token: token}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		s.logger.Debug("Session lookup failed", zap.Error(err))
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
