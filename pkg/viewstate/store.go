package viewstate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// KV is the key-value backend the view state persists through.
type KV interface {
	// Get returns the stored value; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// KeyFunc maps an owner to its storage key.
type KeyFunc func(owner string) string

// Repository loads and saves State values for owners. Writes for one owner
// are serialized in-process, and each owner carries its own request
// generations so a slow request cannot overwrite state from a newer one.
type Repository struct {
	kv  KV
	key KeyFunc
	now func() time.Time

	mu     sync.Mutex
	owners map[string]*ownerSlot
}

type ownerSlot struct {
	mu   sync.Mutex
	gens Generations
}

// NewRepository builds a repository. A nil key func uses "viewstate:<owner>".
func NewRepository(kv KV, key KeyFunc) *Repository {
	if key == nil {
		key = func(owner string) string { return "viewstate:" + owner }
	}
	return &Repository{kv: kv, key: key, now: time.Now, owners: make(map[string]*ownerSlot)}
}

func (r *Repository) slot(owner string) *ownerSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.owners[owner]
	if !ok {
		s = &ownerSlot{}
		r.owners[owner] = s
	}
	return s
}

// Begin issues a request token for owner. Every token issued earlier for the
// same owner becomes stale.
func (r *Repository) Begin(owner string) Token {
	return r.slot(normaliseOwner(owner)).gens.Next()
}

// Load returns the owner's state, or a fresh one when nothing is stored.
func (r *Repository) Load(ctx context.Context, owner string) (*State, error) {
	owner = normaliseOwner(owner)
	raw, ok, err := r.kv.Get(ctx, r.key(owner))
	if err != nil {
		return nil, fmt.Errorf("viewstate: load %s: %w", owner, err)
	}
	if !ok || len(raw) == 0 {
		return New(), nil
	}
	state := New()
	if err := msgpack.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("viewstate: decode %s: %w", owner, err)
	}
	if state.Favorites == nil {
		state.Favorites = []string{}
	}
	return state, nil
}

// Save persists the owner's state.
func (r *Repository) Save(ctx context.Context, owner string, state *State) error {
	owner = normaliseOwner(owner)
	snapshot := state.clone()
	snapshot.UpdatedAt = r.now().UTC()
	payload, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("viewstate: encode %s: %w", owner, err)
	}
	if err := r.kv.Set(ctx, r.key(owner), payload); err != nil {
		return fmt.Errorf("viewstate: save %s: %w", owner, err)
	}
	state.UpdatedAt = snapshot.UpdatedAt
	return nil
}

// Update loads, mutates and saves the owner's state in one call. Concurrent
// updates for the same owner run one after another.
func (r *Repository) Update(ctx context.Context, owner string, fn func(*State)) (*State, error) {
	owner = normaliseOwner(owner)
	slot := r.slot(owner)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return r.update(ctx, owner, fn)
}

// Commit is Update guarded by a token from Begin. When a newer token has been
// issued for the owner since, nothing is written and applied is false.
func (r *Repository) Commit(ctx context.Context, owner string, token Token, fn func(*State)) (state *State, applied bool, err error) {
	owner = normaliseOwner(owner)
	slot := r.slot(owner)
	slot.mu.Lock()
	defer slot.mu.Unlock()
	applied = slot.gens.Apply(token, func() {
		state, err = r.update(ctx, owner, fn)
	})
	return state, applied, err
}

func (r *Repository) update(ctx context.Context, owner string, fn func(*State)) (*State, error) {
	state, err := r.Load(ctx, owner)
	if err != nil {
		return nil, err
	}
	fn(state)
	if err := r.Save(ctx, owner, state); err != nil {
		return nil, err
	}
	return state, nil
}

func normaliseOwner(owner string) string {
	if owner = strings.TrimSpace(owner); owner != "" {
		return owner
	}
	return "default"
}

// RedisKV stores values in Redis, optionally with an expiry.
type RedisKV struct {
	client *redis.Redis
	ttl    time.Duration
}

// NewRedisKV wraps a go-zero Redis client. A zero ttl stores without expiry.
func NewRedisKV(client *redis.Redis, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

// Get implements KV.
func (k *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := k.client.GetCtx(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

// Set implements KV.
func (k *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if k.ttl > 0 {
		return k.client.SetexCtx(ctx, key, string(value), int(k.ttl/time.Second))
	}
	return k.client.SetCtx(ctx, key, string(value))
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV returns an empty in-process KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements KV.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
