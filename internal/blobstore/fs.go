package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"autoprotocol/internal/fileutil"
	"autoprotocol/internal/logging"
)

const (
	lockDirName  = ".locks"
	lockInterval = 10 * time.Millisecond
)

// FSStore keeps each blob in its own file at <root>/<scope>/<name>.
type FSStore struct {
	root   string
	logger *slog.Logger
}

// OpenFS returns a file system store rooted at root, creating it if needed.
func OpenFS(root string, logger *slog.Logger) (*FSStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("blob store root is empty")
	}
	if err := os.MkdirAll(filepath.Join(root, lockDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create blob store root: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FSStore{root: root, logger: logger}, nil
}

// Root returns the directory the store lives in.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) scopeDir(scope string) string {
	return filepath.Join(s.root, filepath.FromSlash(scope))
}

// lock takes the scope lock, shared or exclusive. Each call opens its own
// descriptor so goroutines in one process exclude each other as well.
func (s *FSStore) lock(ctx context.Context, scope string, exclusive bool) (*flock.Flock, error) {
	name := strings.ReplaceAll(scope, "/", "_") + ".lock"
	lock := flock.New(filepath.Join(s.root, lockDirName, name))
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = lock.TryLockContext(ctx, lockInterval)
	} else {
		ok, err = lock.TryRLockContext(ctx, lockInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("lock scope %s: %w", scope, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock scope %s: not acquired", scope)
	}
	return lock, nil
}

func unlock(lock *flock.Flock) {
	_ = lock.Unlock()
}

// List returns every blob in scope.
func (s *FSStore) List(ctx context.Context, scope string) ([]Blob, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	lock, err := s.lock(ctx, scope, false)
	if err != nil {
		return nil, err
	}
	defer unlock(lock)

	dir := s.scopeDir(scope)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}

	blobs := make([]Blob, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", scope, entry.Name(), err)
		}
		blob := Blob{Scope: scope, Name: entry.Name(), Data: data}
		if info, err := entry.Info(); err == nil {
			blob.ModTime = info.ModTime()
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

// Read returns the content of one blob.
func (s *FSStore) Read(ctx context.Context, scope, name string) ([]byte, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	lock, err := s.lock(ctx, scope, false)
	if err != nil {
		return nil, err
	}
	defer unlock(lock)

	data, err := os.ReadFile(filepath.Join(s.scopeDir(scope), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", scope, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", scope, name, err)
	}
	return data, nil
}

// Write stores data under name, replacing any previous content atomically.
func (s *FSStore) Write(ctx context.Context, scope, name string, data []byte) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	lock, err := s.lock(ctx, scope, true)
	if err != nil {
		return err
	}
	defer unlock(lock)

	dir := s.scopeDir(scope)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scope %s: %w", scope, err)
	}
	if err := fileutil.WriteAtomic(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write %s/%s: %w", scope, name, err)
	}
	s.logger.Debug("blob written",
		logging.String(logging.FieldScope, scope),
		logging.String(logging.FieldBlob, name),
		logging.Int("bytes", len(data)),
	)
	return nil
}

// Delete removes one blob.
func (s *FSStore) Delete(ctx context.Context, scope, name string) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	lock, err := s.lock(ctx, scope, true)
	if err != nil {
		return err
	}
	defer unlock(lock)

	err = os.Remove(filepath.Join(s.scopeDir(scope), name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s/%s: %w", scope, name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, name, err)
	}
	return nil
}

// Clear removes every blob file in scope. Nested scopes are left alone.
func (s *FSStore) Clear(ctx context.Context, scope string) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	lock, err := s.lock(ctx, scope, true)
	if err != nil {
		return err
	}
	defer unlock(lock)

	dir := s.scopeDir(scope)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list %s: %w", scope, err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("clear %s: %w", scope, err)
		}
		removed++
	}
	s.logger.Debug("scope cleared", logging.String(logging.FieldScope, scope), logging.Int("removed", removed))
	return nil
}

// Close is a no-op; locks are released after every operation.
func (s *FSStore) Close() error { return nil }
