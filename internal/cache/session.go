package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/keydesk/keydesk/internal/auth"
	"github.com/keydesk/keydesk/internal/model"
)

// sessionPrefix is the Redis key prefix for admin sessions.
// Keys carry a digest of the cookie token, never the token itself.
const sessionPrefix = "session:"

// ErrSessionNotFound is returned for unknown, expired or unreadable sessions.
var ErrSessionNotFound = errors.New("session not found")

// CreateSession stores a new session for the admin and returns the cookie
// token alongside the stored record. The entry expires after ttl.
func (c *Cache) CreateSession(ctx context.Context, adminID int64, email string, ttl time.Duration) (string, *model.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:        ulid.Make().String(),
		AdminID:   adminID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return "", nil, fmt.Errorf("marshal session: %w", err)
	}

	created, err := c.client.SetNX(ctx, sessionKey(token), data, ttl).Result()
	if err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	if !created {
		return "", nil, errors.New("store session: token collision")
	}

	return token, session, nil
}

// GetSession looks up the live session for a cookie token.
func (c *Cache) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	data, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupted entry - treat as miss
		return nil, ErrSessionNotFound
	}

	if session.AdminID == 0 || session.IsExpired(time.Now()) {
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.client.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return sessionPrefix + auth.HashToken(token)
}
