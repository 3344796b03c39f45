package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List the series Sonarr manages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.sonarrClient(cfg)
			if err != nil {
				return err
			}
			series, err := client.ListSeries(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sonarr library: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, series)
			}
			out := cmd.OutOrStdout()
			if len(series) == 0 {
				fmt.Fprintln(out, "Sonarr library is empty")
				return nil
			}
			rows := make([][]string, 0, len(series))
			for _, s := range series {
				year := ""
				if s.Year > 0 {
					year = strconv.Itoa(s.Year)
				}
				rows = append(rows, []string{s.Title, year, strconv.FormatInt(s.TVDBID, 10), s.Path})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Title", "Year", "TVDB", "Path"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d series\n", len(series))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output series as JSON")
	return cmd
}
