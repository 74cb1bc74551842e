package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard prevents two checkout attempts with the same key from running at
// once. Acquire returns false when the key is already held.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// guardTTL bounds how long an abandoned key can block retries if a process
// dies between Acquire and Release.
const guardTTL = 30 * time.Second

// MemoryGuard is the in-process Guard used when no Redis is configured.
// It only protects a single instance; deployments running more than one
// replica should configure the Redis guard instead.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]time.Time)}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if deadline, ok := g.held[key]; ok && time.Now().Before(deadline) {
		return false, nil
	}
	g.held[key] = time.Now().Add(guardTTL)
	return true, nil
}

func (g *MemoryGuard) Release(ctx context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
}

// RedisGuard implements Guard with SET NX so the lock holds across replicas.
type RedisGuard struct {
	client *redis.Client
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, key, 1, guardTTL).Result()
}

func (g *RedisGuard) Release(ctx context.Context, key string) {
	g.client.Del(ctx, key)
}
