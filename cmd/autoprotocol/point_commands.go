package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/config"
	"autoprotocol/internal/eventconf"
)

func newPointCommand(ctx *commandContext) *cobra.Command {
	pointCmd := &cobra.Command{
		Use:   "point",
		Short: "Manage the checkpoint this device records at",
	}

	pointCmd.AddCommand(&cobra.Command{
		Use:   "set ID",
		Short: "Set the active point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			point := eventconf.DefaultPoint()
			if err := point.Set(eventconf.KeyPointID, args[0]); err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				if err := eventconf.ActivePoint(store).Save(cmd.Context(), point); err != nil {
					return fmt.Errorf("save point configuration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Active point is %d\n", point.ID)
				return nil
			})
		},
	})

	pointCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the active point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store blobstore.Store) error {
				point, ok, err := eventconf.ActivePoint(store).Load(cmd.Context())
				if err != nil {
					return fmt.Errorf("load point configuration: %w", err)
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No active point configuration")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPairs(point.Pairs()))
				return nil
			})
		},
	})

	return pointCmd
}
