package preflight

import (
	"context"

	"reelchain/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the preflight checks for the given config. The TMDB probe is
// skipped when pinger is nil.
func RunAll(ctx context.Context, cfg *config.Config, pinger Pinger) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Archive.Enabled {
		results = append(results, CheckDirectoryAccess("Archive directory", cfg.Paths.ArchiveDir))
	}
	if pinger != nil {
		results = append(results, CheckTMDB(ctx, pinger, cfg.Puzzle.LowestYear))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
