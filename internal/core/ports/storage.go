package ports

import "context"

// KeyValueStore is durable client-side state. The session store keeps two
// entries in it: "token" and "user".
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
