package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/voxindia/quickcart-backend/pkg/redis"
)

// ErrSlotEmpty signals that a session has no persisted cart yet.
var ErrSlotEmpty = errors.New("cart slot empty")

// Slot is the persistence surface for a session's cart snapshot. The stored
// payload is an opaque JSON document; the service owns its shape.
type Slot interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Clear(ctx context.Context, sessionID string) error
}

type cartStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

type redisSlot struct {
	store cartStore
	ttl   time.Duration
}

// NewRedisSlot persists cart snapshots in Redis under the session's cart key.
// Each save refreshes the TTL so active sessions never expire mid-shop.
func NewRedisSlot(store *redis.Client, ttl time.Duration) Slot {
	return &redisSlot{store: store, ttl: ttl}
}

func (s *redisSlot) Load(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := s.store.Get(ctx, s.store.CartKey(sessionID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *redisSlot) Save(ctx context.Context, sessionID string, payload []byte) error {
	return s.store.Set(ctx, s.store.CartKey(sessionID), payload, s.ttl)
}

func (s *redisSlot) Clear(ctx context.Context, sessionID string) error {
	return s.store.Del(ctx, s.store.CartKey(sessionID))
}

// MemorySlot is an in-process Slot for tests and local development without
// a Redis instance.
type MemorySlot struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{slots: make(map[string][]byte)}
}

func (s *MemorySlot) Load(_ context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.slots[sessionID]
	if !ok {
		return nil, ErrSlotEmpty
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func (s *MemorySlot) Save(_ context.Context, sessionID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(payload))
	copy(stored, payload)
	s.slots[sessionID] = stored
	return nil
}

func (s *MemorySlot) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sessionID)
	return nil
}
