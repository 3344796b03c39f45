package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"

	"sonashow/internal/config"
	"sonashow/internal/logging"
	"sonashow/internal/services"
	"sonashow/internal/services/sonarr"
	"sonashow/internal/services/tmdb"
	"sonashow/internal/services/tvdb"
)

// clients is one generation of upstream API clients. A nil client means its
// credentials are not configured yet.
type clients struct {
	tmdb   *tmdb.Client
	tvdb   *tvdb.Client
	sonarr *sonarr.Client
}

func buildClients(cfg config.Config, logger *slog.Logger) *clients {
	timeout := cfg.RequestTimeout()
	set := &clients{}
	var err error
	if set.tmdb, err = tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, tmdb.WithTimeout(timeout)); err != nil {
		logging.WarnWithContext(logger, "tmdb client unavailable", "tmdb_unconfigured",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set tmdb_api_key in settings"),
			logging.String(logging.FieldImpact, "discovery rounds will find nothing"))
	}
	if set.tvdb, err = tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.BaseURL, tvdb.WithTimeout(timeout)); err != nil {
		logging.WarnWithContext(logger, "tvdb client unavailable", "tvdb_unconfigured",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set tvdb_api_key in settings"),
			logging.String(logging.FieldImpact, "series cannot be added"))
	}
	if set.sonarr, err = sonarr.New(cfg.Sonarr.Address, cfg.Sonarr.APIKey, timeout); err != nil {
		logging.WarnWithContext(logger, "sonarr client unavailable", "sonarr_unconfigured",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "set sonarr_address in settings"),
			logging.String(logging.FieldImpact, "library cannot be listed"))
	}
	return set
}

// upstream forwards to the current client generation. It satisfies every
// collaborator interface the engine consumes.
type upstream struct {
	current atomic.Pointer[clients]
}

func newUpstream(set *clients) *upstream {
	u := &upstream{}
	u.current.Store(set)
	return u
}

func (u *upstream) swap(set *clients) {
	u.current.Store(set)
}

func unconfigured(service, operation string) error {
	return services.Wrap(services.ErrConfiguration, service, operation, "client not configured", nil)
}

func (u *upstream) IdentifierFor(ctx context.Context, title string) (int64, error) {
	c := u.current.Load().tmdb
	if c == nil {
		return 0, unconfigured("tmdb", "search tv")
	}
	return c.IdentifierFor(ctx, title)
}

func (u *upstream) RelatedTo(ctx context.Context, id int64) ([]tmdb.Show, error) {
	c := u.current.Load().tmdb
	if c == nil {
		return nil, unconfigured("tmdb", "recommendations")
	}
	return c.RelatedTo(ctx, id)
}

func (u *upstream) Authenticate(ctx context.Context) (string, error) {
	c := u.current.Load().tvdb
	if c == nil {
		return "", unconfigured("tvdb", "login")
	}
	return c.Authenticate(ctx)
}

func (u *upstream) Search(ctx context.Context, title, token string) ([]tvdb.SearchResult, error) {
	c := u.current.Load().tvdb
	if c == nil {
		return nil, unconfigured("tvdb", "search")
	}
	return c.Search(ctx, title, token)
}

func (u *upstream) ListSeries(ctx context.Context) ([]sonarr.Series, error) {
	c := u.current.Load().sonarr
	if c == nil {
		return nil, unconfigured("sonarr", "list series")
	}
	return c.ListSeries(ctx)
}

func (u *upstream) AddSeries(ctx context.Context, payload sonarr.AddRequest) (sonarr.AddResult, error) {
	c := u.current.Load().sonarr
	if c == nil {
		return sonarr.AddResult{}, unconfigured("sonarr", "add series")
	}
	return c.AddSeries(ctx, payload)
}
