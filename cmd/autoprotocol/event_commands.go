package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
	"autoprotocol/internal/fileutil"
)

// eventFlags maps the event new flags onto block keys, in canonical order.
var eventFlags = []struct {
	flag  string
	key   string
	usage string
}{
	{"name", eventconf.KeyEventName, "Event name"},
	{"max-participant", eventconf.KeyMaxParticipant, "Highest participant number (0 for no limit)"},
	{"auto-sync-delay", eventconf.KeyAutoSyncDelay, "Minutes to wait after the next full minute in auto sync mode"},
	{"manual-sync-delay", eventconf.KeyManualSyncDelay, "Seconds to wait in manual sync mode"},
	{"laps", eventconf.KeyLapsCount, "Number of laps"},
	{"checkpoints", eventconf.KeyCheckpoints, "Number of checkpoints"},
}

func newEventCommand(ctx *commandContext) *cobra.Command {
	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Manage event configurations",
	}

	eventCmd.AddCommand(newEventNewCommand(ctx))
	eventCmd.AddCommand(newEventShowCommand(ctx))
	eventCmd.AddCommand(newEventListCommand(ctx))
	eventCmd.AddCommand(newEventApplyCommand(ctx))
	eventCmd.AddCommand(newEventImportCommand(ctx))
	eventCmd.AddCommand(newEventExportCommand(ctx))
	eventCmd.AddCommand(newEventDeleteCommand(ctx))

	return eventCmd
}

func newEventNewCommand(ctx *commandContext) *cobra.Command {
	values := make([]string, len(eventFlags))
	var saveName string
	var apply bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an event configuration from defaults and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			event := eventconf.DefaultEvent()
			for i, f := range eventFlags {
				if !cmd.Flags().Changed(f.flag) {
					continue
				}
				if err := event.Set(f.key, values[i]); err != nil {
					return fmt.Errorf("--%s: %w", f.flag, err)
				}
			}
			save := cmd.Flags().Changed("save")

			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				out := cmd.OutOrStdout()
				if save {
					name, err := eventconf.SaveEvent(cmd.Context(), store, saveName, event)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Saved event configuration as %s\n", name)
				}
				if apply {
					if err := eventconf.ActiveEvent(store).Save(cmd.Context(), event); err != nil {
						return fmt.Errorf("apply event configuration: %w", err)
					}
					fmt.Fprintln(out, "Event configuration is now active")
				}
				if !save && !apply {
					fmt.Fprint(out, eventconf.EncodeEvent(event))
					return nil
				}
				fmt.Fprintln(out, renderPairs(event.Pairs()))
				return nil
			})
		},
	}

	for i, f := range eventFlags {
		cmd.Flags().StringVar(&values[i], f.flag, "", f.usage)
	}
	cmd.Flags().StringVar(&saveName, "save", "", "Save to the event library under this name (empty for a dated name)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Make this the active event configuration")
	return cmd
}

func newEventShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Show the active or a saved event configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				var (
					event eventconf.Event
					title string
				)
				if len(args) == 1 {
					e, err := eventconf.LoadEventFile(cmd.Context(), store, args[0])
					if err != nil {
						return notFound(err, "event configuration", args[0])
					}
					event, title = e, args[0]
				} else {
					e, ok, err := eventconf.ActiveEvent(store).Load(cmd.Context())
					if err != nil {
						return fmt.Errorf("load active event configuration: %w", err)
					}
					if !ok {
						fmt.Fprintln(cmd.OutOrStdout(), "No active event configuration")
						return nil
					}
					event, title = e, "Active event"
				}
				if asJSON {
					return writeJSON(cmd, pairsMap(event.Pairs()))
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderSectionHeader(title, shouldColorize(out)))
				fmt.Fprintln(out, renderPairs(event.Pairs()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newEventListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved event configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				names, err := eventconf.ListEvents(cmd.Context(), store)
				if err != nil {
					return fmt.Errorf("list events: %w", err)
				}
				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprintln(out, "No saved event configurations")
					return nil
				}
				fmt.Fprintln(out, renderNames("Event configuration", names))
				return nil
			})
		},
	}
}

func newEventApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply NAME",
		Short: "Make a saved event configuration active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				event, err := eventconf.LoadEventFile(cmd.Context(), store, args[0])
				if err != nil {
					return notFound(err, "event configuration", args[0])
				}
				if err := eventconf.ActiveEvent(store).Save(cmd.Context(), event); err != nil {
					return fmt.Errorf("apply event configuration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Event %q is now active\n", event.Name)
				return nil
			})
		},
	}
}

func newEventImportCommand(ctx *commandContext) *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "import PATH",
		Short: "Import an .apc file into the event library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				name, event, err := eventconf.ImportEvent(cmd.Context(), store, strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported event configuration as %s\n", name)
				if apply {
					if err := eventconf.ActiveEvent(store).Save(cmd.Context(), event); err != nil {
						return fmt.Errorf("apply event configuration: %w", err)
					}
					fmt.Fprintln(out, "Event configuration is now active")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Also make the imported configuration active")
	return cmd
}

func newEventExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write a saved event configuration as an .apc file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				event, err := eventconf.LoadEventFile(cmd.Context(), store, args[0])
				if err != nil {
					return notFound(err, "event configuration", args[0])
				}
				body := eventconf.EncodeEvent(event)
				if strings.TrimSpace(outputPath) == "" {
					fmt.Fprint(cmd.OutOrStdout(), body)
					return nil
				}
				target, err := config.ExpandPath(outputPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := fileutil.WriteAtomic(target, []byte(body), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", target, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported event configuration to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (stdout when empty)")
	return cmd
}

func newEventDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a saved event configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				if err := eventconf.DeleteEvent(cmd.Context(), store, args[0]); err != nil {
					return notFound(err, "event configuration", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted event configuration %s\n", args[0])
				return nil
			})
		},
	}
}
