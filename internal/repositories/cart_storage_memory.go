package repositories

import (
	"context"
	"sync"
	"time"
)

type memorySlot struct {
	value   []byte
	expires time.Time // zero means never
}

// MemoryCartStorage is an in-process CartStorage. Slots expire ttl after their
// last Save, matching RedisCartStorage.
type MemoryCartStorage struct {
	slots map[string]memorySlot
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
}

// NewMemoryCartStorage creates a new instance of MemoryCartStorage. A ttl of
// zero keeps slots forever; a nil clock means time.Now.
func NewMemoryCartStorage(ttl time.Duration, clock func() time.Time) *MemoryCartStorage {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCartStorage{
		slots: make(map[string]memorySlot),
		ttl:   ttl,
		now:   clock,
	}
}

func (s memorySlot) expired(now time.Time) bool {
	return !s.expires.IsZero() && !now.Before(s.expires)
}

// Load returns a copy of the slot under key. Expired slots are dropped.
func (s *MemoryCartStorage) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	if slot.expired(s.now()) {
		delete(s.slots, key)
		return nil, ErrNotFound
	}
	return append([]byte(nil), slot.value...), nil
}

// Save replaces the slot under key and restarts its TTL.
func (s *MemoryCartStorage) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := memorySlot{value: append([]byte(nil), value...)}
	if s.ttl > 0 {
		slot.expires = s.now().Add(s.ttl)
	}
	s.slots[key] = slot
	return nil
}

// Sweep drops every expired slot and returns how many were removed.
func (s *MemoryCartStorage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, slot := range s.slots {
		if slot.expired(now) {
			delete(s.slots, key)
			removed++
		}
	}
	return removed
}

// Len is the number of slots held, expired or not.
func (s *MemoryCartStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Start sweeps every interval until ctx is done. It is a no-op when the
// storage has no TTL or interval is not positive.
func (s *MemoryCartStorage) Start(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
