package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

type session struct {
	userID  int64
	expires time.Time
}

// Sessions is a sliding-expiry session store used when Redis is disabled.
type Sessions struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
	now      func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{ttl: ttl, sessions: map[string]session{}, now: time.Now}
}

func (s *Sessions) Create(ctx context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.sessions[token] = session{userID: userID, expires: s.now().Add(s.ttl)}
	return token, nil
}

// Get resolves a token and extends its lifetime.
func (s *Sessions) Get(ctx context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	now := s.now()
	if now.After(sess.expires) {
		delete(s.sessions, token)
		return 0, ErrSessionNotFound
	}
	sess.expires = now.Add(s.ttl)
	s.sessions[token] = sess
	return sess.userID, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}
