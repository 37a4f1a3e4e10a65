package services

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/repositories"

	"go.uber.org/zap"
)

// CartStorageKey is the fixed slot name carts are persisted under.
const CartStorageKey = "cart"

// CartService hands out the cart store for a shopper session.
type CartService struct {
	storage repositories.CartStorage
	log     *zap.Logger

	// locks serializes requests that touch the same session so a read after a
	// write always sees the write.
	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewCartService creates a new CartService.
func NewCartService(storage repositories.CartStorage, log *zap.Logger) *CartService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		storage: storage,
		log:     log,
		locks:   make(map[string]*sessionLock),
	}
}

// SlotKey returns the storage key for a session's cart.
func SlotKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", CartStorageKey, sessionID)
}

// Open hydrates the cart for sessionID. Notifications from mutations go to n.
func (s *CartService) Open(ctx context.Context, sessionID string, n Notifier) *CartStore {
	return NewCartStore(ctx, s.storage, SlotKey(sessionID), n, s.log)
}

// WithCart runs fn against the session's cart while holding the session lock.
func (s *CartService) WithCart(ctx context.Context, sessionID string, n Notifier, fn func(*CartStore) error) error {
	unlock := s.lock(sessionID)
	defer unlock()
	return fn(s.Open(ctx, sessionID, n))
}

func (s *CartService) lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.locksMu.Unlock()
	}
}
