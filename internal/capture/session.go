package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/logging"
	"autoprotocol/internal/participants"
	"autoprotocol/internal/timepoint"
)

var (
	ErrNotReady        = errors.New("record is not ready")
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrNoRecords       = errors.New("no records captured")
	ErrReviewMode      = errors.New("session is in review mode")
)

// Options configures a Session.
type Options struct {
	// Ceiling clamps participant numbers; zero disables clamping.
	Ceiling int
	Logger  *slog.Logger
}

// Session holds the visible records of a capture in insertion order. It is
// safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	blobs    blobstore.Store
	ceiling  int
	logger   *slog.Logger
	records  []timepoint.Record
	fallback []timepoint.Record
	hidden   int
	review   bool
}

// NewSession starts an empty session persisting into blobs.
func NewSession(blobs blobstore.Store, opts Options) *Session {
	return &Session{
		blobs:   blobs,
		ceiling: opts.Ceiling,
		logger:  logging.NewComponentLogger(opts.Logger, "capture"),
	}
}

// Add appends an empty placeholder and returns its index.
func (s *Session) Add() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return 0, ErrReviewMode
	}
	s.records = append(s.records, timepoint.Placeholder())
	return len(s.records) - 1, nil
}

// Mark assigns ts to the first record without a timestamp, or appends a new
// record when every visible record already has one. It returns the index of
// the record that received the time.
func (s *Session) Mark(ts int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return 0, ErrReviewMode
	}
	for i := range s.records {
		if s.records[i].IsEmpty() {
			s.records[i].SetTime(ts)
			return i, nil
		}
	}
	r := timepoint.Placeholder()
	r.SetTime(ts)
	s.records = append(s.records, r)
	return len(s.records) - 1, nil
}

// SetParticipants cleans raw range input, clamps it to the ceiling and stores
// it on record i. The stored text is returned. On error the record is left
// unchanged.
func (s *Session) SetParticipants(i int, raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return "", ErrReviewMode
	}
	if err := s.checkIndex(i); err != nil {
		return "", err
	}
	text, err := participants.Normalize(raw, s.ceiling)
	if err != nil {
		return "", err
	}
	s.records[i].SetParticipants(text)
	return text, nil
}

// Hide persists the ready record i and removes it from the visible list. A
// failed write keeps the record in memory so it still reaches the review.
func (s *Session) Hide(ctx context.Context, i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return ErrReviewMode
	}
	if err := s.checkIndex(i); err != nil {
		return err
	}
	record := s.records[i]
	if !record.IsReady() {
		return fmt.Errorf("record %d: %w", i, ErrNotReady)
	}
	if _, err := Persist(ctx, s.blobs, record); err != nil {
		logging.WarnWithContext(s.logger, "record kept in memory", "capture_persist_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "record is lost if the process exits before the protocol is saved"),
			logging.String(logging.FieldErrorHint, "check that the data directory is writable"),
		)
		s.fallback = append(s.fallback, record)
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.hidden++
	return nil
}

// Remove discards visible record i.
func (s *Session) Remove(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return ErrReviewMode
	}
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.records = slices.Delete(s.records, i, i+1)
	return nil
}

// HasUnready reports whether the session cannot be stopped yet: nothing has
// been captured, or a visible record lacks a time or participants.
func (s *Session) HasUnready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasUnready()
}

func (s *Session) hasUnready() bool {
	if len(s.records) == 0 && s.hidden == 0 {
		return true
	}
	for _, r := range s.records {
		if !r.IsReady() {
			return true
		}
	}
	return false
}

// Stop reads back every pending record, merges it with the in-memory
// fallback and the visible records, sorts the result by timestamp and
// switches to review mode. Pending records stay stored until the protocol is
// published. A record that fails to decode aborts the stop.
func (s *Session) Stop(ctx context.Context) ([]timepoint.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review {
		return slices.Clone(s.records), nil
	}
	for i, r := range s.records {
		if !r.IsReady() {
			return nil, fmt.Errorf("record %d: %w", i, ErrNotReady)
		}
	}
	persisted, err := Pending(ctx, s.blobs)
	if err != nil {
		return nil, err
	}
	merged := make([]timepoint.Record, 0, len(persisted)+len(s.fallback)+len(s.records))
	merged = append(merged, persisted...)
	merged = append(merged, s.fallback...)
	merged = append(merged, s.records...)
	if len(merged) == 0 {
		return nil, ErrNoRecords
	}
	timepoint.SortByTimestamp(merged)

	s.records = merged
	s.fallback = nil
	s.review = true
	s.logger.Info("capture stopped",
		logging.Int("records", len(merged)),
		logging.Int("persisted", len(persisted)),
	)
	return slices.Clone(merged), nil
}

// Records returns a copy of the visible records.
func (s *Session) Records() []timepoint.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Hidden returns how many records were hidden in this session.
func (s *Session) Hidden() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// Reviewing reports whether Stop has completed.
func (s *Session) Reviewing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

func (s *Session) checkIndex(i int) error {
	if i < 0 || i >= len(s.records) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(s.records))
	}
	return nil
}

// Persist writes one record to the pending scope under a random name.
func Persist(ctx context.Context, blobs blobstore.Store, record timepoint.Record) (string, error) {
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := blobs.Write(ctx, blobstore.ScopeTimepoints, name, []byte(timepoint.Encode(record))); err != nil {
		return "", fmt.Errorf("persist record: %w", err)
	}
	return name, nil
}

// Pending reads every persisted record in time order without removing them.
// The first record that fails to decode aborts the read.
func Pending(ctx context.Context, blobs blobstore.Store) ([]timepoint.Record, error) {
	list, err := blobs.List(ctx, blobstore.ScopeTimepoints)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	records := make([]timepoint.Record, 0, len(list))
	for _, blob := range list {
		r, err := timepoint.Decode(string(blob.Data))
		if err != nil {
			return nil, fmt.Errorf("pending record %s: %w", blob.Name, err)
		}
		records = append(records, r)
	}
	timepoint.SortByTimestamp(records)
	return records, nil
}

// Discard removes every persisted record.
func Discard(ctx context.Context, blobs blobstore.Store) error {
	return blobs.Clear(ctx, blobstore.ScopeTimepoints)
}
