package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/capture"
	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/participants"
	"autoprotocol/internal/protocol"
	"autoprotocol/internal/timepoint"
)

var (
	errNoActiveEvent = errors.New("no active event configuration; run 'autoprotocol event apply NAME' or 'autoprotocol event new --apply'")
	errNoActivePoint = errors.New("no active point configuration; run 'autoprotocol point set ID'")
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture checkpoint times interactively",
		Long: "Starts an interactive capture session reading commands from stdin.\n" +
			"Type ? inside the session for the list of commands.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store blobstore.Store) error {
				event, ok, err := eventconf.ActiveEvent(store).Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load event configuration: %w", err)
				}
				if !ok {
					return errNoActiveEvent
				}
				point, ok, err := eventconf.ActivePoint(store).Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load point configuration: %w", err)
				}
				if !ok {
					return errNoActivePoint
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				base := capture.SyncBaseTime(time.Now(), cfg.Capture.SyncMode, event)
				shell := &captureShell{
					session: capture.NewSession(store, capture.Options{
						Ceiling: ceilingFor(cfg, event),
						Logger:  logger,
					}),
					clock: capture.Clock{Base: base},
					publisher: &protocol.Publisher{
						Blobs:      store,
						Events:     eventconf.ActiveEvent(store),
						Points:     eventconf.ActivePoint(store),
						NamePrefix: cfg.Protocol.DefaultName,
						Logger:     logger,
					},
					out: cmd.OutOrStdout(),
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s, point %d", event.Name, point.ID), shouldColorize(out)))
				fmt.Fprintf(out, "Clock starts at %s (%s sync). Type ? for help.\n", base.Format(time.TimeOnly), cfg.Capture.SyncMode)
				return shell.run(cmd.Context(), cmd.InOrStdin())
			})
		},
	}

	captureCmd.AddCommand(newCaptureAddCommand(ctx))
	captureCmd.AddCommand(newCaptureListCommand(ctx))
	captureCmd.AddCommand(newCaptureClearCommand(ctx))

	return captureCmd
}

func newCaptureAddCommand(ctx *commandContext) *cobra.Command {
	var at string
	var raw string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store one pending record without an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := parseElapsed(at)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store blobstore.Store) error {
				event, _, err := eventconf.ActiveEvent(store).Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load event configuration: %w", err)
				}
				text, err := participants.Normalize(raw, ceilingFor(cfg, event))
				if err != nil {
					return fmt.Errorf("--participants: %w", err)
				}
				if text == "" {
					return errors.New("--participants: no participant numbers given")
				}
				record := timepoint.New(ms, text)
				if _, err := capture.Persist(cmd.Context(), store, record); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s %s\n", record.Clock(), record.Participants)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Elapsed time in milliseconds or as HH:MM:SS[.mmm]")
	cmd.Flags().StringVar(&raw, "participants", "", "Participant numbers and ranges, e.g. 1-5,9")
	_ = cmd.MarkFlagRequired("at")
	_ = cmd.MarkFlagRequired("participants")
	return cmd
}

func newCaptureListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending records waiting for a protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				records, err := capture.Pending(cmd.Context(), store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No pending records")
					return nil
				}
				fmt.Fprintln(out, renderRecords(records, false))
				return nil
			})
		},
	}
}

func newCaptureClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every pending record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				if err := capture.Discard(cmd.Context(), store); err != nil {
					return fmt.Errorf("clear pending records: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pending records cleared")
				return nil
			})
		},
	}
}

// ceilingFor returns the participant ceiling to clamp to, or zero when
// clamping is off.
func ceilingFor(cfg *config.Config, event eventconf.Event) int {
	if !cfg.Capture.EnforceCeiling {
		return 0
	}
	if ceiling, ok := event.Ceiling(); ok {
		return ceiling
	}
	return 0
}

// parseElapsed accepts plain milliseconds or a clock reading.
func parseElapsed(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("--at: negative time %d", ms)
		}
		return ms, nil
	}
	for _, layout := range []string{"15:04:05.000", time.TimeOnly} {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		clock := time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second +
			time.Duration(t.Nanosecond())
		return clock.Milliseconds(), nil
	}
	return 0, fmt.Errorf("--at: %q is neither milliseconds nor HH:MM:SS[.mmm]", value)
}
