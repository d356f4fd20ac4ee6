package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"authcore/internal/models"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// SessionCache is a read-through cache in front of the session table. The
// store stays authoritative: every session write goes through here so revoked
// or renewed sessions are never served stale, and a cache failure degrades to
// a store read.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache wraps the redis client. A nil client disables caching; all
// methods are nil-safe so callers never branch on it.
func NewSessionCache(client *redis.Client) *SessionCache {
	if client == nil {
		return nil
	}
	return &SessionCache{client: client}
}

func (c *SessionCache) Get(ctx context.Context, id string) *models.Session {
	if c == nil {
		return nil
	}
	data, err := c.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		return nil
	}
	s := &models.Session{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil
	}
	s.ID = id
	return s
}

func (c *SessionCache) Set(ctx context.Context, session *models.Session) {
	if c == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+session.ID, data, ttl)
	pipe.SAdd(ctx, userSessionKeyPrefix+session.UserID, session.ID)
	pipe.Expire(ctx, userSessionKeyPrefix+session.UserID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[session][cache] set failed: %v", err)
	}
}

func (c *SessionCache) Del(ctx context.Context, session *models.Session) {
	if c == nil {
		return
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+session.ID)
	pipe.SRem(ctx, userSessionKeyPrefix+session.UserID, session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[session][cache] del failed: %v", err)
	}
}

// DelAllForUser drops every cached session for the user. Backs RevokeAll so a
// password change kills cached sessions too, not just the rows.
func (c *SessionCache) DelAllForUser(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	setKey := userSessionKeyPrefix + userID
	ids, err := c.client.SMembers(ctx, setKey).Result()
	if err != nil {
		log.Printf("[session][cache] list sessions for user %s failed: %v", userID, err)
		return
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, setKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[session][cache] del sessions for user %s failed: %v", userID, err)
	}
}
