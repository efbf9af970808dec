package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/capture"
	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/protocol"
	"autoprotocol/internal/timepoint"
)

func newProtocolCommand(ctx *commandContext) *cobra.Command {
	protocolCmd := &cobra.Command{
		Use:   "protocol",
		Short: "Build and inspect protocols",
	}

	protocolCmd.AddCommand(newProtocolBuildCommand(ctx))
	protocolCmd.AddCommand(newProtocolListCommand(ctx))
	protocolCmd.AddCommand(newProtocolShowCommand(ctx))
	protocolCmd.AddCommand(newProtocolDeleteCommand(ctx))

	return protocolCmd
}

func newProtocolBuildCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Store a protocol from the pending records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store blobstore.Store) error {
				records, err := capture.Pending(cmd.Context(), store)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					return errors.New("no pending records; capture some first")
				}
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				publisher := &protocol.Publisher{
					Blobs:      store,
					Events:     eventconf.ActiveEvent(store),
					Points:     eventconf.ActivePoint(store),
					NamePrefix: cfg.Protocol.DefaultName,
					Logger:     logger,
				}
				stored, doc, err := publisher.Publish(cmd.Context(), name, records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Protocol stored as %s (%d records, %d participants)\n",
					stored, len(records), len(doc.Timeline()))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Protocol name (dated default when empty)")
	return cmd
}

func newProtocolListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored protocols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				names, err := protocol.List(cmd.Context(), store)
				if err != nil {
					return fmt.Errorf("list protocols: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprintln(out, "No stored protocols")
					return nil
				}
				fmt.Fprintln(out, renderNames("Protocol", names))
				return nil
			})
		},
	}
}

type protocolJSON struct {
	Name     string             `json:"name"`
	Meta     map[string]string  `json:"meta"`
	Timeline map[string][]int64 `json:"timeline"`
}

func newProtocolShowCommand(ctx *commandContext) *cobra.Command {
	var raw bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				doc, err := protocol.Load(cmd.Context(), store, args[0])
				if err != nil {
					return notFound(err, "protocol", args[0])
				}
				out := cmd.OutOrStdout()
				switch {
				case raw:
					fmt.Fprint(out, doc.String())
					return nil
				case asJSON:
					payload := protocolJSON{
						Name:     args[0],
						Meta:     pairsMap(doc.Meta()),
						Timeline: make(map[string][]int64),
					}
					for id, stamps := range doc.Timeline() {
						payload.Timeline[strconv.Itoa(id)] = stamps
					}
					return writeJSON(cmd, payload)
				}

				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader(args[0], colorize))
				fmt.Fprintln(out, renderPairs(doc.Meta()))
				tl := doc.Timeline()
				rows := make([][]string, 0, len(tl))
				for _, id := range tl.IDs() {
					clocks := make([]string, 0, len(tl[id]))
					for _, ts := range tl[id] {
						clocks = append(clocks, timepoint.FormatElapsed(ts))
					}
					rows = append(rows, []string{strconv.Itoa(id), strconv.Itoa(len(clocks)), strings.Join(clocks, ", ")})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Participant", "Passes", "Times"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored document text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("raw", "json")
	return cmd
}

func newProtocolDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				if err := protocol.Delete(cmd.Context(), store, args[0]); err != nil {
					return notFound(err, "protocol", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted protocol %s\n", args[0])
				return nil
			})
		},
	}
}
