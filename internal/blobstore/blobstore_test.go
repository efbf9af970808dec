package blobstore_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/config"
)

type opener func(t *testing.T) blobstore.Store

func backends() map[string]opener {
	return map[string]opener{
		"fs": func(t *testing.T) blobstore.Store {
			t.Helper()
			store, err := blobstore.OpenFS(t.TempDir(), nil)
			if err != nil {
				t.Fatalf("OpenFS: %v", err)
			}
			return store
		},
		"sqlite": func(t *testing.T) blobstore.Store {
			t.Helper()
			store, err := blobstore.OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"), nil)
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func names(blobs []blobstore.Blob) []string {
	out := make([]string, 0, len(blobs))
	for _, b := range blobs {
		out = append(out, b.Name)
	}
	slices.Sort(out)
	return out
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			blobs, err := store.List(ctx, blobstore.ScopeTimepoints)
			if err != nil {
				t.Fatalf("List on empty scope: %v", err)
			}
			if len(blobs) != 0 {
				t.Fatalf("expected empty scope, got %d blobs", len(blobs))
			}

			if err := store.Write(ctx, blobstore.ScopeTimepoints, "a", []byte("1-3%100")); err != nil {
				t.Fatalf("Write a: %v", err)
			}
			if err := store.Write(ctx, blobstore.ScopeTimepoints, "b", []byte("2,4%50")); err != nil {
				t.Fatalf("Write b: %v", err)
			}
			if err := store.Write(ctx, blobstore.ScopeObjects, "pointconf", []byte("x")); err != nil {
				t.Fatalf("Write other scope: %v", err)
			}
			if err := store.Write(ctx, blobstore.ScopeTimepoints, "a", []byte("1-3%101")); err != nil {
				t.Fatalf("overwrite a: %v", err)
			}

			data, err := store.Read(ctx, blobstore.ScopeTimepoints, "a")
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if string(data) != "1-3%101" {
				t.Fatalf("Read returned %q", data)
			}

			blobs, err = store.List(ctx, blobstore.ScopeTimepoints)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if diff := cmp.Diff([]string{"a", "b"}, names(blobs)); diff != "" {
				t.Fatalf("unexpected names (-want +got):\n%s", diff)
			}
			for _, b := range blobs {
				if b.Scope != blobstore.ScopeTimepoints || b.ModTime.IsZero() {
					t.Fatalf("blob metadata missing: %+v", b)
				}
			}

			if err := store.Delete(ctx, blobstore.ScopeTimepoints, "b"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, blobstore.ScopeTimepoints, "b"); !errors.Is(err, blobstore.ErrNotFound) {
				t.Fatalf("second Delete error = %v, want ErrNotFound", err)
			}
			if _, err := store.Read(ctx, blobstore.ScopeTimepoints, "b"); !errors.Is(err, blobstore.ErrNotFound) {
				t.Fatalf("Read missing error = %v, want ErrNotFound", err)
			}

			if err := store.Clear(ctx, blobstore.ScopeTimepoints); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			blobs, err = store.List(ctx, blobstore.ScopeTimepoints)
			if err != nil {
				t.Fatalf("List after clear: %v", err)
			}
			if len(blobs) != 0 {
				t.Fatalf("expected cleared scope, got %v", names(blobs))
			}
			if _, err := store.Read(ctx, blobstore.ScopeObjects, "pointconf"); err != nil {
				t.Fatalf("Clear touched another scope: %v", err)
			}
			if err := store.Clear(ctx, "never/written"); err != nil {
				t.Fatalf("Clear on unknown scope: %v", err)
			}
		})
	}
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)
			for _, bad := range []string{"", ".", "..", "../escape", "a/b", `a\b`, ".hidden"} {
				if err := store.Write(ctx, blobstore.ScopeProtocols, bad, []byte("x")); err == nil {
					t.Fatalf("Write accepted name %q", bad)
				}
			}
			for _, bad := range []string{"", "/abs", "tmp//x", "../up"} {
				if _, err := store.List(ctx, bad); err == nil {
					t.Fatalf("List accepted scope %q", bad)
				}
			}
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			var wg sync.WaitGroup
			for i := range 16 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := store.Write(ctx, blobstore.ScopeTimepoints, fmt.Sprintf("r%02d", i), []byte("1%1")); err != nil {
						t.Errorf("Write %d: %v", i, err)
					}
				}()
			}
			wg.Wait()

			blobs, err := store.List(ctx, blobstore.ScopeTimepoints)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(blobs) != 16 {
				t.Fatalf("expected 16 blobs, got %d", len(blobs))
			}
		})
	}
}

func TestFSStoreLayout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := blobstore.OpenFS(root, nil)
	if err != nil {
		t.Fatalf("OpenFS: %v", err)
	}
	if err := store.Write(ctx, blobstore.ScopeTimepoints, "abc", []byte("5%9")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "tmp", "timepoints", "abc"))
	if err != nil {
		t.Fatalf("expected blob on disk: %v", err)
	}
	if string(data) != "5%9" {
		t.Fatalf("unexpected content %q", data)
	}

	// Files dropped in by hand are visible; dot files are not.
	if err := os.MkdirAll(filepath.Join(root, "protocols"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "protocols", ".partial"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write dot file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "protocols", "manual.apd"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write manual file: %v", err)
	}
	blobs, err := store.List(ctx, blobstore.ScopeProtocols)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"manual.apd"}, names(blobs)); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "blobs.db")

	store, err := blobstore.OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Write(ctx, blobstore.ScopeEvents, "cup.apc", []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := blobstore.OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	data, err := reopened.Read(ctx, blobstore.ScopeEvents, "cup.apc")
	if err != nil {
		t.Fatalf("Read after reopen: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected data %q", data)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.SQLitePath = filepath.Join(base, "db", "blobs.db")

	store, err := blobstore.Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open fs: %v", err)
	}
	if _, ok := store.(*blobstore.FSStore); !ok {
		t.Fatalf("expected FSStore, got %T", store)
	}
	_ = store.Close()

	cfg.Storage.Backend = config.BackendSQLite
	store, err = blobstore.Open(&cfg, nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*blobstore.SQLiteStore); !ok {
		t.Fatalf("expected SQLiteStore, got %T", store)
	}
	if _, err := os.Stat(cfg.Storage.SQLitePath); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}
