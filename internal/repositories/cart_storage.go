package repositories

import "context"

// CartStorage is the durable key-value slot a cart is persisted to.
// The value is the JSON array of cart lines.
type CartStorage interface {
	// Load returns ErrNotFound when nothing has been saved under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
