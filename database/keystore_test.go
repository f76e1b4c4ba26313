package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]KeyStore {
	return map[string]KeyStore{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
	}
}

func TestKeyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := store.Get(ctx, KeySessionToken); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}
			if err := store.Set(ctx, KeySessionToken, "t1"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, KeyProfileID, "p1"); err != nil {
				t.Fatalf("set: %v", err)
			}
			v, ok, err := store.Get(ctx, KeySessionToken)
			if err != nil || !ok || v != "t1" {
				t.Errorf("expected t1, got %q ok=%v err=%v", v, ok, err)
			}
			if err := store.Remove(ctx, KeySessionToken); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if _, ok, _ := store.Get(ctx, KeySessionToken); ok {
				t.Error("expected token to be removed")
			}
			if v, ok, _ := store.Get(ctx, KeyProfileID); !ok || v != "p1" {
				t.Errorf("expected profile id to survive, got %q", v)
			}
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			store.Set(ctx, KeySessionToken, "t1")
			store.Set(ctx, KeyProfileID, "p1")
			store.Set(ctx, "theme", "dark")

			if err := Clear(ctx, store, KeySessionToken, KeyProfileID); err != nil {
				t.Fatalf("clear: %v", err)
			}
			for _, k := range []string{KeySessionToken, KeyProfileID} {
				if _, ok, _ := store.Get(ctx, k); ok {
					t.Errorf("expected %s to be cleared", k)
				}
			}
			if _, ok, _ := store.Get(ctx, "theme"); !ok {
				t.Error("expected unrelated key to survive")
			}
		})
	}
}

type removeOnly struct {
	KeyStore
	failKey string
}

func (r removeOnly) Remove(ctx context.Context, key string) error {
	if key == r.failKey {
		return errors.New("disk full")
	}
	return r.KeyStore.Remove(ctx, key)
}

func TestClearFallsBackToRemove(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	mem.Set(ctx, KeySessionToken, "t1")
	mem.Set(ctx, KeyProfileID, "p1")
	store := removeOnly{KeyStore: mem, failKey: KeySessionToken}

	err := Clear(ctx, store, KeySessionToken, KeyProfileID)
	if err == nil {
		t.Fatal("expected error from failing key")
	}
	if _, ok, _ := mem.Get(ctx, KeyProfileID); ok {
		t.Error("expected remaining keys to be removed despite the failure")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := NewFileStore(path).Set(ctx, KeySessionToken, "t1"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := NewFileStore(path).Get(ctx, KeySessionToken)
	if err != nil || !ok || v != "t1" {
		t.Errorf("expected t1 from a fresh instance, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFileStore(path).Get(context.Background(), KeySessionToken); err == nil {
		t.Error("expected an error for a corrupt file")
	}
}
