package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/ray-remotestate/storefront/config"
)

// Keys persisted on the device.
const (
	KeySessionToken = "sessionToken"
	KeyProfileID    = "sellerProfileId"
)

// KeyStore is the persisted key-value store holding the session. A missing key
// is reported with ok == false, not an error.
type KeyStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Open returns the keystore selected by cfg.KeystoreDriver.
func Open(ctx context.Context, cfg *config.Config) (KeyStore, error) {
	switch cfg.KeystoreDriver {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.KeystorePath), nil
	case "postgres":
		return ConnectAndMigrate(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown keystore driver %q", cfg.KeystoreDriver)
	}
}

// Clearer is implemented by stores that can drop several keys at once.
type Clearer interface {
	Clear(ctx context.Context, keys ...string) error
}

// Clear removes keys from store, atomically when the store supports it.
func Clear(ctx context.Context, store KeyStore, keys ...string) error {
	if c, ok := store.(Clearer); ok {
		return c.Clear(ctx, keys...)
	}
	var errs []error
	for _, k := range keys {
		if err := store.Remove(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
