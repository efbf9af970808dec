package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/logging"
	"autoprotocol/internal/textutil"
	"autoprotocol/internal/timepoint"
)

const defaultNamePrefix = "protocol"

// Publisher turns finished capture records into a stored protocol.
type Publisher struct {
	Blobs  blobstore.Store
	Events eventconf.Store[eventconf.Event]
	Points eventconf.Store[eventconf.Point]
	// NamePrefix is used for dated default names; "protocol" when empty.
	NamePrefix string
	Logger     *slog.Logger
	Now        func() time.Time
}

func (p *Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Publisher) logger() *slog.Logger {
	return logging.NewComponentLogger(p.Logger, "publisher")
}

// FileName turns a user supplied name into the stored blob name, falling
// back to <prefix>_dd.MM.yyyy when name is empty after escaping.
func (p *Publisher) FileName(name string) string {
	clean := textutil.SanitizeFileName(textutil.TrimExtension(name, Extension))
	if clean == "" {
		prefix := p.NamePrefix
		if prefix == "" {
			prefix = defaultNamePrefix
		}
		clean = textutil.DefaultName(prefix, p.now())
	}
	return clean + Extension
}

// Publish builds a document from the active configurations and records,
// writes it to the protocols scope and then clears the active configurations
// and the pending capture records. Missing configurations contribute their
// defaults. Cleanup failures are logged; the protocol is already stored.
func (p *Publisher) Publish(ctx context.Context, name string, records []timepoint.Record) (string, Document, error) {
	event, err := loadOrDefault(ctx, p.Events, eventconf.DefaultEvent())
	if err != nil {
		return "", Document{}, fmt.Errorf("load event configuration: %w", err)
	}
	point, err := loadOrDefault(ctx, p.Points, eventconf.DefaultPoint())
	if err != nil {
		return "", Document{}, fmt.Errorf("load point configuration: %w", err)
	}

	doc, err := NewBuilder().Event(event).Point(point).Build(records)
	if err != nil {
		return "", Document{}, fmt.Errorf("build protocol: %w", err)
	}

	fileName := p.FileName(name)
	if err := p.Blobs.Write(ctx, blobstore.ScopeProtocols, fileName, []byte(doc.String())); err != nil {
		return "", Document{}, fmt.Errorf("store protocol: %w", err)
	}

	logger := p.logger()
	logger.Info("protocol stored",
		logging.String(logging.FieldBlob, fileName),
		logging.Int("records", len(records)),
		logging.Int("participants", len(doc.timeline)),
	)
	p.cleanup(ctx, logger)
	return fileName, doc, nil
}

func (p *Publisher) cleanup(ctx context.Context, logger *slog.Logger) {
	steps := []struct {
		what string
		run  func(context.Context) error
	}{
		{"active event configuration", clearFunc(p.Events)},
		{"active point configuration", clearFunc(p.Points)},
		{"pending capture records", func(ctx context.Context) error {
			return p.Blobs.Clear(ctx, blobstore.ScopeTimepoints)
		}},
	}
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			logging.WarnWithContext(logger, "cleanup after publish failed", "publish_cleanup_failed",
				logging.String("target", step.what),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale data remains and will be included in the next protocol"),
				logging.String(logging.FieldErrorHint, "run 'autoprotocol capture clear' before the next session"),
			)
		}
	}
}

type clearer interface {
	Clear(context.Context) error
}

func clearFunc(c clearer) func(context.Context) error {
	return func(ctx context.Context) error {
		if c == nil {
			return nil
		}
		return c.Clear(ctx)
	}
}

func loadOrDefault[T any](ctx context.Context, store eventconf.Store[T], def T) (T, error) {
	if store == nil {
		return def, nil
	}
	value, ok, err := store.Load(ctx)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}
