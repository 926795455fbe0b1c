// README: Ban list checks backed by a Redis set, with an in-process fallback.
package infra

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"cabcab/internal/types"
)

const banSetKey = "cabcab:banned_users"

// RedisBanChecker answers ban checks from a Redis set shared with the account
// administration tooling.
type RedisBanChecker struct {
	client *redis.Client
}

func NewRedisBanChecker(client *redis.Client) *RedisBanChecker {
	return &RedisBanChecker{client: client}
}

func (c *RedisBanChecker) IsBanned(ctx context.Context, userID types.ID) (bool, error) {
	banned, err := c.client.SIsMember(ctx, banSetKey, string(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("ban check: %w", err)
	}
	return banned, nil
}

// MemoryBanChecker is the ban list for local runs without Redis.
type MemoryBanChecker struct {
	mu     sync.RWMutex
	banned map[types.ID]bool
}

func NewMemoryBanChecker() *MemoryBanChecker {
	return &MemoryBanChecker{banned: make(map[types.ID]bool)}
}

func (c *MemoryBanChecker) Ban(userID types.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banned[userID] = true
}

func (c *MemoryBanChecker) Unban(userID types.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.banned, userID)
}

func (c *MemoryBanChecker) IsBanned(_ context.Context, userID types.ID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.banned[userID], nil
}
