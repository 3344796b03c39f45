package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sonashow/internal/catalog"
	"sonashow/internal/discovery"
	"sonashow/internal/notifications"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	var seeds []string
	var rounds int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Run discovery rounds and print the candidates found",
		Long: "Run discovery rounds seeded from the Sonarr library and print the candidates found.\n" +
			"Without --seed every series in the library is eligible as a seed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			library, err := ctx.sonarrClient(cfg)
			if err != nil {
				return err
			}
			source, err := ctx.tmdbClient(cfg)
			if err != nil {
				return err
			}

			index := catalog.New()
			items, err := index.Refresh(cmd.Context(), library)
			if err != nil {
				return fmt.Errorf("list sonarr library: %w", err)
			}
			selected := seeds
			if len(selected) == 0 {
				for _, item := range items {
					selected = append(selected, item.Name)
				}
			} else {
				selected = index.Select(seeds)
			}

			recorder := &notifications.Recorder{}
			session := discovery.NewSession(index, source, recorder, discovery.Options{
				Filters:    discovery.FiltersFromConfig(cfg.Discovery),
				SampleSize: cfg.Discovery.SampleSize,
				Logger:     logger,
			})
			if err := session.Start(selected); err != nil {
				return err
			}
			if rounds <= 0 {
				rounds = 1
			}
			exhausted := false
			for i := 0; i < rounds; i++ {
				result, err := session.RunRound(cmd.Context())
				if err != nil {
					return err
				}
				if result.Cancelled {
					return cmd.Context().Err()
				}
				if result.Exhausted {
					exhausted = true
					break
				}
			}

			candidates := session.Candidates()
			if asJSON {
				return writeJSON(cmd, candidates)
			}
			out := cmd.OutOrStdout()
			if len(candidates) == 0 {
				if exhausted {
					fmt.Fprintf(out, "%s: %s\n", discovery.ExhaustedTitle, discovery.ExhaustedMessage)
				} else {
					fmt.Fprintln(out, "No candidates found")
				}
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Year", "Rating", "Votes", "Language", "Genres", "Because"},
				candidateRows(candidates),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&seeds, "seed", "s", nil, "Library series to seed from (repeatable)")
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 1, "Number of rounds to run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output candidates as JSON")
	return cmd
}

func candidateRows(candidates []discovery.Candidate) [][]string {
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{
			c.Name,
			c.Year,
			strconv.FormatFloat(c.Rating, 'f', 1, 64),
			strconv.Itoa(c.Votes),
			c.Language,
			strings.Join(c.Genres, ", "),
			c.SourceSeed,
		})
	}
	return rows
}
