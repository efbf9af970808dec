package blobstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"autoprotocol/internal/config"
	"autoprotocol/internal/logging"
)

// Scopes used by autoprotocol.
const (
	ScopeProtocols  = "protocols"
	ScopeEvents     = "eventconfs"
	ScopeObjects    = "objects"
	ScopeTimepoints = "tmp/timepoints"
)

// ErrNotFound is returned when a named blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Blob is one stored object.
type Blob struct {
	Scope   string
	Name    string
	Data    []byte
	ModTime time.Time
}

// Store is a key-addressed blob store.
type Store interface {
	// List returns every blob in scope. A scope that was never written is
	// empty, not an error.
	List(ctx context.Context, scope string) ([]Blob, error)
	Read(ctx context.Context, scope, name string) ([]byte, error)
	// Write creates or replaces a blob.
	Write(ctx context.Context, scope, name string, data []byte) error
	Delete(ctx context.Context, scope, name string) error
	// Clear removes every blob in scope.
	Clear(ctx context.Context, scope string) error
	Close() error
}

// Open returns the backend selected by cfg.Storage.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "blobstore")
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return OpenSQLite(cfg.Storage.SQLitePath, logger)
	case config.BackendFS, "":
		return OpenFS(cfg.Paths.DataDir, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func validateScope(scope string) error {
	if scope == "" {
		return errors.New("blob scope is empty")
	}
	for _, part := range strings.Split(scope, "/") {
		if err := validateSegment(part); err != nil {
			return fmt.Errorf("blob scope %q: %w", scope, err)
		}
	}
	return nil
}

func validateName(name string) error {
	if err := validateSegment(name); err != nil {
		return fmt.Errorf("blob name %q: %w", name, err)
	}
	return nil
}

func validateSegment(s string) error {
	switch {
	case s == "":
		return errors.New("empty path segment")
	case strings.HasPrefix(s, "."):
		return errors.New("must not start with a dot")
	case strings.ContainsAny(s, "/\\\x00"):
		return errors.New("must not contain path separators")
	}
	return nil
}
