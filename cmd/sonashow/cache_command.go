package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sonashow/internal/idcache"
	"sonashow/internal/logging"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the series id cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func openCache(cmd *cobra.Command, ctx *commandContext) (*idcache.Cache, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	cache, err := idcache.Open(cmd.Context(), cfg.IDCachePath(), logging.NewNop())
	if err != nil {
		return nil, fmt.Errorf("open id cache: %w", err)
	}
	return cache, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached title to series id mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			entries, err := cache.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Title,
					e.Year,
					strconv.FormatInt(e.TVDBID, 10),
					e.MatchedName,
					e.CachedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Year", "TVDB", "Matched", "Cached"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openCache(cmd, ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			count, err := cache.Count(cmd.Context())
			if err != nil {
				return err
			}
			if err := cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached mappings\n", count)
			return nil
		},
	}
}
