package transport

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store keeps the bodies recorded by the offline transport, keyed by request path.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent or expired.
	Get(key string) (value []byte, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreOptions controls retention characteristics for concrete store implementations.
type StoreOptions struct {
	// TTL is how long a recorded body stays readable
	TTL time.Duration

	// CleanupInterval is how often expired entries are swept
	CleanupInterval time.Duration
}

const (
	defaultStoreTTL        = 28 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts StoreOptions) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeStoreOptions(opts)

	switch typ {
	case "", "memory":
		return NewMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeStoreOptions(opts StoreOptions) StoreOptions {
	if opts.TTL <= 0 {
		opts.TTL = defaultStoreTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts StoreOptions) *MemoryStore {
	opts = normalizeStoreOptions(opts)
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     opts.TTL,
		now:     time.Now,
	}
}

// Get implements Store.
func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if !entry.expires.After(m.now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

// Put implements Store.
func (m *MemoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{
		value:   append([]byte(nil), value...),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
