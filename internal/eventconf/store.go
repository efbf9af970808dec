package eventconf

import (
	"context"
	"errors"
	"fmt"

	"autoprotocol/internal/blobstore"
)

// Names of the active configuration blobs in the objects scope.
const (
	ActiveEventName = "currenteventconf"
	ActivePointName = "pointconf"
)

// Store holds one designated "current" configuration.
type Store[T any] interface {
	// Load returns the stored value; ok is false when none was saved.
	Load(ctx context.Context) (value T, ok bool, err error)
	Save(ctx context.Context, value T) error
	Clear(ctx context.Context) error
}

// BlobStore keeps a configuration as a single blob.
type BlobStore[T any] struct {
	blobs  blobstore.Store
	scope  string
	name   string
	encode func(T) string
	decode func(string) (T, error)
}

// NewBlobStore returns a Store that keeps its value in the objects scope
// under name.
func NewBlobStore[T any](blobs blobstore.Store, name string, encode func(T) string, decode func(string) (T, error)) *BlobStore[T] {
	return &BlobStore[T]{
		blobs:  blobs,
		scope:  blobstore.ScopeObjects,
		name:   name,
		encode: encode,
		decode: decode,
	}
}

// ActiveEvent returns the store for the active event configuration.
func ActiveEvent(blobs blobstore.Store) *BlobStore[Event] {
	return NewBlobStore(blobs, ActiveEventName, EncodeEvent, DecodeEvent)
}

// ActivePoint returns the store for the active point configuration.
func ActivePoint(blobs blobstore.Store) *BlobStore[Point] {
	return NewBlobStore(blobs, ActivePointName, EncodePoint, DecodePoint)
}

func (s *BlobStore[T]) Load(ctx context.Context) (T, bool, error) {
	var zero T
	data, err := s.blobs.Read(ctx, s.scope, s.name)
	if errors.Is(err, blobstore.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}
	value, err := s.decode(string(data))
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", s.name, err)
	}
	return value, true, nil
}

func (s *BlobStore[T]) Save(ctx context.Context, value T) error {
	if err := s.blobs.Write(ctx, s.scope, s.name, []byte(s.encode(value))); err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}
	return nil
}

// Clear removes the stored value. Clearing an empty store is not an error.
func (s *BlobStore[T]) Clear(ctx context.Context) error {
	err := s.blobs.Delete(ctx, s.scope, s.name)
	if err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("clear %s: %w", s.name, err)
	}
	return nil
}

// MemoryStore is an in-process Store.
type MemoryStore[T any] struct {
	value T
	ok    bool
}

func (m *MemoryStore[T]) Load(context.Context) (T, bool, error) {
	return m.value, m.ok, nil
}

func (m *MemoryStore[T]) Save(_ context.Context, value T) error {
	m.value, m.ok = value, true
	return nil
}

func (m *MemoryStore[T]) Clear(context.Context) error {
	var zero T
	m.value, m.ok = zero, false
	return nil
}
