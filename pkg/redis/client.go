// Package redis provides the optional session cache client.
package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to redis, or returns nil when no address is configured;
// the session cache treats a nil client as cache-off.
func NewClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("[redis] ping failed, session cache disabled: %v", err)
		return nil
	}
	return client
}
