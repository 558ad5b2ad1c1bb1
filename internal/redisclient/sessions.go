package redisclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired tokens.
var ErrSessionNotFound = errors.New("session not found")

// getAndTouch returns the session value and pushes its expiry out in one round trip.
var getAndTouch = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return false
end
redis.call("EXPIRE", KEYS[1], ARGV[1])
return v
`)

// Sessions stores session tokens in Redis with a sliding TTL
type Sessions struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessions creates a session store on top of c
func NewSessions(c *Client, ttl time.Duration) *Sessions {
	return &Sessions{rdb: c.rdb, ttl: ttl}
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

func (s *Sessions) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Get resolves a token and extends its lifetime
func (s *Sessions) Get(ctx context.Context, token string) (int64, error) {
	result, err := getAndTouch.Run(ctx, s.rdb, []string{sessionKey(token)}, int(s.ttl.Seconds())).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("session lookup script failed: %w", err)
	}

	raw, ok := result.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected script result type %T", result)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}
