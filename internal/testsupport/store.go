package testsupport

import (
	"context"
	"testing"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/capture"
	"autoprotocol/internal/config"
	"autoprotocol/internal/timepoint"
)

// MustOpenStore opens the configured blob store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) blobstore.Store {
	t.Helper()

	store, err := blobstore.Open(cfg, nil)
	if err != nil {
		t.Fatalf("blobstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// WritePending persists records as pending capture records.
func WritePending(t testing.TB, store blobstore.Store, records ...timepoint.Record) {
	t.Helper()

	for _, r := range records {
		if _, err := capture.Persist(context.Background(), store, r); err != nil {
			t.Fatalf("capture.Persist: %v", err)
		}
	}
}
