// Package store persists one game state per player key.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/socialquest/engine"
)

var (
	// ErrNotFound is returned by Load when the player has no saved state.
	ErrNotFound = errors.New("state not found")
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store loads and saves whole aggregates. Implementations must be safe for
// concurrent use across different keys.
type Store interface {
	Load(ctx context.Context, key string) (*engine.State, error)
	Save(ctx context.Context, key string, s *engine.State) error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
)

// New returns the store for backend. The database handle is required for
// mysql and the redis client for redis.
func New(backend string, db *gorm.DB, rdb *redis.Client) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendMySQL:
		if db == nil {
			return nil, fmt.Errorf("%s backend: database not initialized", backend)
		}
		return NewGormStore(db), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("%s backend: redis client not initialized", backend)
		}
		return NewRedisStore(rdb), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
