package tokenstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryTier is the session tier: entries live only as long as the process
// and their TTL. Lapsed entries are invisible to Get immediately; a janitor
// goroutine reclaims them from the map in the background.
type MemoryTier struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	stop    chan struct{}
	once    sync.Once
}

func NewMemoryTier() *MemoryTier {
	t := &MemoryTier{
		entries: map[string]memoryEntry{},
		stop:    make(chan struct{}),
	}

	go t.janitor()
	return t
}

func (t *MemoryTier) Get(_ context.Context, sid string, key string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, exists := t.entries[sid+"\x00"+key]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", nil
	}

	return entry.value, nil
}

func (t *MemoryTier) Set(_ context.Context, sid string, key string, value string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[sid+"\x00"+key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, sid string, keys ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, key := range keys {
		delete(t.entries, sid+"\x00"+key)
	}

	return nil
}

func (t *MemoryTier) Close() {
	t.once.Do(func() { close(t.stop) })
}

func (t *MemoryTier) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.evictExpired()
		case <-t.stop:
			return
		}
	}
}

func (t *MemoryTier) evictExpired() {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	for key, entry := range t.entries {
		if now.After(entry.expiresAt) {
			delete(t.entries, key)
		}
	}
}
