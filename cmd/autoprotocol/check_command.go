package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/config"
	"autoprotocol/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories, storage and pending records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store blobstore.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderSectionHeader("Preflight", colorize))

				failed := 0
				for _, result := range preflight.RunAll(cmd.Context(), cfg, store) {
					kind := statusOK
					if !result.Passed {
						kind = statusError
						failed++
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
				if failed > 0 {
					return errors.New("preflight checks failed")
				}
				return nil
			})
		},
	}
}
