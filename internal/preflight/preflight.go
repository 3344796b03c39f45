package preflight

import (
	"context"

	"sonashow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config in display order.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	timeout := cfg.RequestTimeout()
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckSonarr(ctx, cfg.Sonarr.Address, cfg.Sonarr.APIKey, timeout),
		CheckTMDB(ctx, cfg.TMDB.BaseURL, cfg.TMDB.APIKey, timeout),
		CheckTVDB(ctx, cfg.TVDB.BaseURL, cfg.TVDB.APIKey, timeout),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
