package eventconf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/textutil"
)

const defaultEventPrefix = "event_configuration"

// ErrNotEventFile is returned when an import path lacks the .apc extension.
var ErrNotEventFile = errors.New("not an event configuration file (expected " + EventExtension + ")")

// EventFileName turns a user supplied name into the stored blob name. An
// empty or fully escaped name falls back to event_configuration_dd.MM.yyyy.
func EventFileName(name string, now time.Time) string {
	clean := textutil.SanitizeFileName(textutil.TrimExtension(name, EventExtension))
	if clean == "" {
		clean = textutil.DefaultName(defaultEventPrefix, now)
	}
	return clean + EventExtension
}

// SaveEvent writes e to the saved events scope and returns the blob name.
func SaveEvent(ctx context.Context, blobs blobstore.Store, name string, e Event) (string, error) {
	fileName := EventFileName(name, time.Now())
	if err := blobs.Write(ctx, blobstore.ScopeEvents, fileName, []byte(EncodeEvent(e))); err != nil {
		return "", fmt.Errorf("save event %s: %w", fileName, err)
	}
	return fileName, nil
}

// LoadEventFile reads a saved event. The extension may be omitted.
func LoadEventFile(ctx context.Context, blobs blobstore.Store, name string) (Event, error) {
	fileName := textutil.EnsureExtension(name, EventExtension)
	data, err := blobs.Read(ctx, blobstore.ScopeEvents, fileName)
	if err != nil {
		return Event{}, err
	}
	e, err := DecodeEvent(string(data))
	if err != nil {
		return Event{}, fmt.Errorf("%s: %w", fileName, err)
	}
	return e, nil
}

// DeleteEvent removes a saved event.
func DeleteEvent(ctx context.Context, blobs blobstore.Store, name string) error {
	return blobs.Delete(ctx, blobstore.ScopeEvents, textutil.EnsureExtension(name, EventExtension))
}

// ListEvents returns the saved event blob names in ascending order.
func ListEvents(ctx context.Context, blobs blobstore.Store) ([]string, error) {
	list, err := blobs.List(ctx, blobstore.ScopeEvents)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, b := range list {
		if textutil.HasExtension(b.Name, EventExtension) {
			names = append(names, b.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// ImportEvent reads an .apc file from disk, checks that it decodes and stores
// it among the saved events under its base name.
func ImportEvent(ctx context.Context, blobs blobstore.Store, path string) (string, Event, error) {
	if !textutil.HasExtension(path, EventExtension) {
		return "", Event{}, fmt.Errorf("%s: %w", path, ErrNotEventFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Event{}, fmt.Errorf("read %s: %w", path, err)
	}
	e, err := DecodeEvent(string(data))
	if err != nil {
		return "", Event{}, fmt.Errorf("import %s: %w", path, err)
	}
	name, err := SaveEvent(ctx, blobs, filepath.Base(path), e)
	if err != nil {
		return "", Event{}, err
	}
	return name, e, nil
}
