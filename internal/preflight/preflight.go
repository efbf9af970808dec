package preflight

import (
	"context"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for cfg. The store checks are skipped
// when store is nil.
func RunAll(ctx context.Context, cfg *config.Config, store blobstore.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if store == nil {
		return results
	}
	results = append(results, CheckStore(ctx, cfg.Storage.Backend, store))
	results = append(results, CheckPending(ctx, store))
	return results
}
