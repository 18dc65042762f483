package pagecache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemoryEntries bounds the in-process cache.
const DefaultMemoryEntries = 512

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an LRU of pages local to one process.
type MemoryStore struct {
	entries *lru.Cache
	now     func() time.Time
}

func NewMemoryStore(size int) *MemoryStore {
	entries, err := lru.New(size)
	if err != nil {
		// Only a non-positive size fails.
		entries, _ = lru.New(DefaultMemoryEntries)
	}
	return &MemoryStore{entries: entries, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry := v.(memoryEntry)
	if !s.now().Before(entry.expires) {
		s.entries.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries.Add(key, memoryEntry{value: value, expires: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.entries.Purge()
	return nil
}
