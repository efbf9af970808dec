package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"autoprotocol/internal/blocktext"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pairsMap turns block fields into a JSON object keyed by block key.
func pairsMap(pairs []blocktext.Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}
