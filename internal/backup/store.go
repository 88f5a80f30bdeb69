package backup

import (
	"context"
	"errors"
)

// CartKey holds the cart written right before a payment attempt.
const CartKey = "cartBackup"

var ErrNotFound = errors.New("backup not found")

// Store is a small durable key-value store that outlives the process.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	Close() error
}
