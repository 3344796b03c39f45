package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sonashow/internal/acquisition"
	"sonashow/internal/catalog"
	"sonashow/internal/discovery"
	"sonashow/internal/idcache"
	"sonashow/internal/identity"
	"sonashow/internal/notifications"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <name> <year>",
		Short: "Resolve a series and add it to Sonarr",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			directory, err := ctx.tvdbClient(cfg)
			if err != nil {
				return err
			}
			library, err := ctx.sonarrClient(cfg)
			if err != nil {
				return err
			}

			cache, err := idcache.Open(cmd.Context(), cfg.IDCachePath(), logger)
			if err != nil {
				return fmt.Errorf("open id cache: %w", err)
			}
			defer cache.Close()

			resolver := identity.NewCachingResolver(
				identity.NewResolver(directory, identity.Options{
					Policy:   identity.Policy(cfg.Discovery.MatchPolicy),
					Fallback: cfg.Discovery.FallbackToTopResult,
					Logger:   logger,
				}),
				cache, logger)

			settings := acquisition.SettingsFromConfig(cfg.Sonarr)
			if dryRun {
				settings.DryRun = true
			}
			recorder := &notifications.Recorder{}
			coordinator := acquisition.New(resolver, library, catalog.New(), settings,
				acquisition.WithSink(recorder),
				acquisition.WithNotifier(notifications.NewService(cfg)),
				acquisition.WithLogger(logger))

			name := acquisition.DecodeName(args[0])
			outcome := coordinator.Acquire(cmd.Context(), name, args[1])
			return printOutcome(cmd, outcome, recorder)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve the series without sending the add request")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome acquisition.Outcome, recorder *notifications.Recorder) error {
	out := cmd.OutOrStdout()
	for _, msg := range recorder.Events(notifications.EventToast) {
		if toast, ok := msg.Payload.(notifications.Toast); ok {
			fmt.Fprintf(out, "%s: %s\n", toast.Title, toast.Message)
		}
	}
	if outcome.Match.ExternalID != 0 {
		fmt.Fprintf(out, "Matched: %s (tvdb %d, cached %s)\n",
			outcome.Match.MatchedName, outcome.Match.ExternalID, yesNo(outcome.Match.Cached))
	}
	fmt.Fprintf(out, "%s (%s): %s\n", outcome.Name, outcome.Year, outcome.Status)
	if outcome.Rejection != "" {
		fmt.Fprintf(out, "Sonarr: %s\n", outcome.Rejection)
	}
	switch {
	case outcome.Err != nil && !errors.Is(outcome.Err, identity.ErrNotFound):
		return outcome.Err
	case outcome.Status == discovery.StatusAdded, outcome.Status == discovery.StatusAlreadyOwned:
		return nil
	default:
		return fmt.Errorf("series not added: %s", outcome.Status)
	}
}
