package capture_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/capture"
	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/faults"
	"autoprotocol/internal/timepoint"
)

func newBlobs(t *testing.T) *blobstore.FSStore {
	t.Helper()
	store, err := blobstore.OpenFS(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("OpenFS: %v", err)
	}
	return store
}

type readOnlyStore struct {
	blobstore.Store
}

func (readOnlyStore) Write(context.Context, string, string, []byte) error {
	return errors.New("read-only file system")
}

func TestMarkFillsFirstEmptyRecord(t *testing.T) {
	s := capture.NewSession(newBlobs(t), capture.Options{})

	if i, _ := s.Add(); i != 0 {
		t.Fatalf("Add index = %d", i)
	}
	if i, _ := s.Add(); i != 1 {
		t.Fatalf("Add index = %d", i)
	}
	if i, _ := s.Mark(100); i != 0 {
		t.Fatalf("first Mark filled %d", i)
	}
	if i, _ := s.Mark(200); i != 1 {
		t.Fatalf("second Mark filled %d", i)
	}
	if i, _ := s.Mark(300); i != 2 {
		t.Fatalf("third Mark should append, got %d", i)
	}

	records := s.Records()
	stamps := []int64{records[0].Timestamp, records[1].Timestamp, records[2].Timestamp}
	if diff := cmp.Diff([]int64{100, 200, 300}, stamps); diff != "" {
		t.Fatalf("timestamps mismatch (-want +got):\n%s", diff)
	}
}

func TestSetParticipantsNormalizesAndClamps(t *testing.T) {
	s := capture.NewSession(newBlobs(t), capture.Options{Ceiling: 50})
	_, _ = s.Mark(10)

	text, err := s.SetParticipants(0, " 1 - 3 , 07 ,, 120")
	if err != nil {
		t.Fatalf("SetParticipants: %v", err)
	}
	if text != "1-3,7,50" {
		t.Fatalf("stored text = %q", text)
	}
	if !s.Records()[0].IsReady() {
		t.Fatal("record should be ready")
	}

	if _, err := s.SetParticipants(0, "99999999999999999999"); err != nil {
		t.Fatalf("clamping must absorb overflow: %v", err)
	}
	if _, err := s.SetParticipants(5, "1"); !errors.Is(err, capture.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSetParticipantsWithoutCeilingReportsParseError(t *testing.T) {
	s := capture.NewSession(newBlobs(t), capture.Options{})
	_, _ = s.Mark(10)
	if _, err := s.SetParticipants(0, "4"); err != nil {
		t.Fatalf("SetParticipants: %v", err)
	}
	_, err := s.SetParticipants(0, "99999999999999999999")
	if faults.Kind(err) != faults.KindParse {
		t.Fatalf("expected parse error, got %v", err)
	}
	if got := s.Records()[0].Participants; got != "4" {
		t.Fatalf("failed update changed record to %q", got)
	}
}

func TestHideRequiresReadyAndPersists(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)
	s := capture.NewSession(blobs, capture.Options{})

	_, _ = s.Mark(500)
	if err := s.Hide(ctx, 0); !errors.Is(err, capture.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	_, _ = s.SetParticipants(0, "2")
	if err := s.Hide(ctx, 0); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if len(s.Records()) != 0 || s.Hidden() != 1 {
		t.Fatalf("record should leave the visible list: %d visible %d hidden", len(s.Records()), s.Hidden())
	}

	pending, err := capture.Pending(ctx, blobs)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if diff := cmp.Diff([]timepoint.Record{timepoint.New(500, "2")}, pending, cmp.AllowUnexported(timepoint.Record{})); diff != "" {
		t.Fatalf("pending mismatch (-want +got):\n%s", diff)
	}
	list, _ := blobs.List(ctx, blobstore.ScopeTimepoints)
	if len(list) != 1 || len(list[0].Name) != 32 {
		t.Fatalf("expected one dashless uuid blob, got %+v", list)
	}
}

func TestHasUnready(t *testing.T) {
	ctx := context.Background()
	s := capture.NewSession(newBlobs(t), capture.Options{})
	if !s.HasUnready() {
		t.Fatal("empty session must report unready")
	}
	_, _ = s.Mark(1)
	if !s.HasUnready() {
		t.Fatal("record without participants is unready")
	}
	_, _ = s.SetParticipants(0, "1")
	if s.HasUnready() {
		t.Fatal("all records ready")
	}
	if err := s.Hide(ctx, 0); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if s.HasUnready() {
		t.Fatal("hidden records count as captured")
	}
	_, _ = s.Add()
	if !s.HasUnready() {
		t.Fatal("placeholder is unready")
	}
	if err := s.Remove(0); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.HasUnready() {
		t.Fatal("removed placeholder should not count")
	}
}

func TestStopMergesPersistedFallbackAndVisible(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)

	// A record left behind by an earlier session.
	if _, err := capture.Persist(ctx, blobs, timepoint.New(50, "9")); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	s := capture.NewSession(blobs, capture.Options{})
	_, _ = s.Mark(300)
	_, _ = s.SetParticipants(0, "1")
	if err := s.Hide(ctx, 0); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	_, _ = s.Mark(100)
	_, _ = s.SetParticipants(0, "2-3")

	got, err := s.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	want := []timepoint.Record{
		timepoint.New(50, "9"),
		timepoint.New(100, "2-3"),
		timepoint.New(300, "1"),
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(timepoint.Record{})); diff != "" {
		t.Fatalf("review mismatch (-want +got):\n%s", diff)
	}
	if !s.Reviewing() {
		t.Fatal("expected review mode")
	}
	if _, err := s.Mark(1); !errors.Is(err, capture.ErrReviewMode) {
		t.Fatalf("expected ErrReviewMode, got %v", err)
	}

	pending, err := capture.Pending(ctx, blobs)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending records must stay until publish: %d %v", len(pending), err)
	}
}

func TestStopKeepsRecordsWhenPersistFails(t *testing.T) {
	ctx := context.Background()
	s := capture.NewSession(readOnlyStore{Store: newBlobs(t)}, capture.Options{})
	_, _ = s.Mark(42)
	_, _ = s.SetParticipants(0, "5")
	if err := s.Hide(ctx, 0); err != nil {
		t.Fatalf("Hide must not fail on write error: %v", err)
	}
	got, err := s.Stop(ctx)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if diff := cmp.Diff([]timepoint.Record{timepoint.New(42, "5")}, got, cmp.AllowUnexported(timepoint.Record{})); diff != "" {
		t.Fatalf("fallback record missing (-want +got):\n%s", diff)
	}
}

func TestStopRejectsUnreadyAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := capture.NewSession(newBlobs(t), capture.Options{})
	if _, err := s.Stop(ctx); !errors.Is(err, capture.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	_, _ = s.Mark(5)
	if _, err := s.Stop(ctx); !errors.Is(err, capture.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestStopFailsFastOnCorruptRecord(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)
	if err := blobs.Write(ctx, blobstore.ScopeTimepoints, "broken", []byte("no delimiter")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := capture.NewSession(blobs, capture.Options{})
	_, _ = s.Mark(5)
	_, _ = s.SetParticipants(0, "1")
	_, err := s.Stop(ctx)
	var decodeErr *faults.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if s.Reviewing() {
		t.Fatal("failed stop must not enter review mode")
	}
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	blobs := newBlobs(t)
	if _, err := capture.Persist(ctx, blobs, timepoint.New(1, "1")); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := capture.Discard(ctx, blobs); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if pending, _ := capture.Pending(ctx, blobs); len(pending) != 0 {
		t.Fatalf("expected no pending records, got %d", len(pending))
	}
}

func TestSyncBaseTime(t *testing.T) {
	now := time.Date(2026, time.October, 15, 10, 41, 27, 600_000_000, time.UTC)
	e := eventconf.DefaultEvent()
	e.AutoSyncDelay = 2
	e.ManualSyncDelay = 15

	auto := capture.SyncBaseTime(now, config.SyncAuto, e)
	if want := time.Date(2026, time.October, 15, 10, 43, 0, 0, time.UTC); !auto.Equal(want) {
		t.Fatalf("auto base = %v, want %v", auto, want)
	}
	manual := capture.SyncBaseTime(now, config.SyncManual, e)
	if want := time.Date(2026, time.October, 15, 10, 41, 42, 0, time.UTC); !manual.Equal(want) {
		t.Fatalf("manual base = %v, want %v", manual, want)
	}
}

func TestClockElapsed(t *testing.T) {
	base := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	now := base.Add(-1500 * time.Millisecond)
	clock := capture.Clock{Base: base, Now: func() time.Time { return now }}
	if clock.Started() || clock.Elapsed() != -1500 {
		t.Fatalf("before start: started=%v elapsed=%d", clock.Started(), clock.Elapsed())
	}
	now = base.Add(61_005 * time.Millisecond)
	if !clock.Started() || clock.Elapsed() != 61_005 {
		t.Fatalf("after start: elapsed=%d", clock.Elapsed())
	}
}
