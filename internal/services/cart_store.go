package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier receives the user-visible messages emitted by cart mutations.
type Notifier interface {
	Notify(n models.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n models.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n models.Notification) { f(n) }

// NotificationRecorder collects notifications, e.g. for one HTTP response.
type NotificationRecorder struct {
	mu    sync.Mutex
	items []models.Notification
}

// Notify appends n.
func (r *NotificationRecorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns what has been recorded so far.
func (r *NotificationRecorder) Notifications() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification{}, r.items...)
}

type discardNotifier struct{}

func (discardNotifier) Notify(models.Notification) {}

// MaxLineQuantity is the most units of one product a cart line may hold.
const MaxLineQuantity = 10000

// addQuantity sums two line quantities, capped at MaxLineQuantity.
func addQuantity(a, b int) int {
	if a > MaxLineQuantity-b {
		return MaxLineQuantity
	}
	return a + b
}

// CartStore is the authoritative cart for one session. Every mutation is
// serialized and followed by a write of the whole cart to its storage slot.
type CartStore struct {
	mu       sync.Mutex
	lines    []models.CartLine
	storage  repositories.CartStorage
	key      string
	notifier Notifier
	log      *zap.Logger
}

// NewCartStore hydrates a store from the slot under key. Unreadable or corrupt
// data yields an empty cart and is never returned as an error.
func NewCartStore(ctx context.Context, storage repositories.CartStorage, key string, notifier Notifier, log *zap.Logger) *CartStore {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &CartStore{
		storage:  storage,
		key:      key,
		notifier: notifier,
		log:      log,
	}
	s.lines = s.hydrate(ctx)
	return s
}

func (s *CartStore) hydrate(ctx context.Context) []models.CartLine {
	raw, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Warn("cart storage unavailable, starting empty", zap.String("key", s.key), zap.Error(err))
		return nil
	}

	var stored []models.CartLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		s.log.Warn("discarding unreadable cart", zap.String("key", s.key), zap.Error(err))
		return nil
	}

	lines := make([]models.CartLine, 0, len(stored))
	index := make(map[string]int, len(stored))
	for _, line := range stored {
		if line.ID == "" || line.Quantity < 1 || line.Price < 0 {
			s.log.Warn("dropping invalid cart line", zap.String("key", s.key), zap.String("id", line.ID))
			continue
		}
		if line.Quantity > MaxLineQuantity {
			s.log.Warn("capping oversized cart line", zap.String("key", s.key), zap.String("id", line.ID))
			line.Quantity = MaxLineQuantity
		}
		if i, ok := index[line.ID]; ok {
			lines[i].Quantity = addQuantity(lines[i].Quantity, line.Quantity)
			continue
		}
		index[line.ID] = len(lines)
		lines = append(lines, line)
	}
	return lines
}

// persistLocked writes the cart; the caller holds s.mu.
func (s *CartStore) persistLocked(ctx context.Context) error {
	lines := s.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, raw); err != nil {
		s.log.Error("failed to save cart", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *CartStore) indexLocked(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// AddItem merges quantity units of item into the cart. A quantity below 1 is
// treated as 1. ErrQuantityLimit is returned, and nothing changes, when the
// line would exceed MaxLineQuantity.
func (s *CartStore) AddItem(ctx context.Context, item models.CartItemInput, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxLineQuantity {
		return ErrQuantityLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(item.ID); i >= 0 {
		if s.lines[i].Quantity > MaxLineQuantity-quantity {
			return ErrQuantityLimit
		}
		s.lines[i].Quantity += quantity
		s.notifier.Notify(models.Notification{
			Level:   models.NotificationSuccess,
			Message: fmt.Sprintf("Updated %s quantity in cart", item.Name),
		})
	} else {
		s.lines = append(s.lines, models.CartLine{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: quantity,
		})
		s.notifier.Notify(models.Notification{
			Level:   models.NotificationSuccess,
			Message: fmt.Sprintf("Added %s to cart", item.Name),
		})
	}
	return s.persistLocked(ctx)
}

// UpdateQuantity sets a line's quantity exactly. A quantity below 1 removes
// the line; one above MaxLineQuantity is ErrQuantityLimit. Unknown ids are ignored.
func (s *CartStore) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, id)
	}
	if quantity > MaxLineQuantity {
		return ErrQuantityLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.lines[i].Quantity = quantity
	return s.persistLocked(ctx)
}

// RemoveItem deletes the line for id. Unknown ids are ignored.
func (s *CartStore) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	removed := s.lines[i]
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.notifier.Notify(models.Notification{
		Level:   models.NotificationInfo,
		Message: fmt.Sprintf("Removed %s from cart", removed.Name),
	})
	return s.persistLocked(ctx)
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	return s.persistLocked(ctx)
}

// Items returns a copy of the lines in insertion order.
func (s *CartStore) Items() []models.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartLine{}, s.lines...)
}

// ItemCount is the number of distinct lines.
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// TotalQuantity is the sum of all line quantities.
func (s *CartStore) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Subtotal is the sum of price times quantity over all lines.
func (s *CartStore) Subtotal() float64 {
	return subtotalOf(s.Items()).InexactFloat64()
}

func subtotalOf(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}
