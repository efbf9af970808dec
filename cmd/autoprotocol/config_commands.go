package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"autoprotocol/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the settings file",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx), newConfigInitCommand())
	return configCmd
}

// initTarget resolves where config init writes, falling back to the default
// location when no path is given.
func initTarget(raw string) (string, error) {
	if raw = strings.TrimSpace(raw); raw == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(raw)
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented settings file to start from",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return fmt.Errorf("resolve settings path: %w", err)
			}

			_, statErr := os.Stat(target)
			switch {
			case statErr == nil && !overwrite:
				return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
			case statErr != nil && !errors.Is(statErr, fs.ErrNotExist):
				return fmt.Errorf("inspect %s: %w", target, statErr)
			}

			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create settings directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sample settings saved: %s\n", target)
			fmt.Fprintf(out, "Review them with: autoprotocol --config %s config validate\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the settings file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing settings file")
	return cmd
}

// settingsPairs lists the effective settings in display order.
func settingsPairs(cfg *config.Config) [][2]string {
	return [][2]string{
		{"data_dir", cfg.Paths.DataDir},
		{"log_dir", cfg.Paths.LogDir},
		{"storage.backend", cfg.Storage.Backend},
		{"storage.sqlite_path", cfg.Storage.SQLitePath},
		{"capture.sync_mode", cfg.Capture.SyncMode},
		{"capture.enforce_ceiling", strconv.FormatBool(cfg.Capture.EnforceCeiling)},
		{"protocol.default_name", cfg.Protocol.DefaultName},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
	}
}

type settingsReport struct {
	Source   string            `json:"source"`
	Exists   bool              `json:"exists"`
	Settings map[string]string `json:"settings"`
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the settings file and show the effective values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			pairs := settingsPairs(cfg)

			if asJSON {
				report := settingsReport{Source: ctx.configPath, Exists: ctx.configExists, Settings: make(map[string]string, len(pairs))}
				for _, p := range pairs {
					report.Settings[p[0]] = p[1]
				}
				return writeJSON(cmd, report)
			}

			source := ctx.configPath
			if !ctx.configExists {
				source += " (missing, built-in defaults)"
			}
			rows := make([][]string, 0, len(pairs)+1)
			rows = append(rows, []string{"source", source})
			for _, p := range pairs {
				rows = append(rows, []string{p[0], p[1]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows, nil))
			fmt.Fprintln(cmd.OutOrStdout(), "Settings OK")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
