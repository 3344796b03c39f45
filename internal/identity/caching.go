package identity

import (
	"context"
	"errors"
	"log/slog"

	"sonashow/internal/idcache"
	"sonashow/internal/logging"
)

// Store is the persistence a CachingResolver consults.
type Store interface {
	Lookup(ctx context.Context, title, year string) (idcache.Entry, bool, error)
	Store(ctx context.Context, entry idcache.Entry) error
	Remove(ctx context.Context, title, year string) error
}

// Forgetter drops a remembered match so the next resolve searches again.
type Forgetter interface {
	Forget(ctx context.Context, title, year string)
}

// Resolving is satisfied by Resolver and CachingResolver.
type Resolving interface {
	Resolve(ctx context.Context, title, year string) (Match, error)
}

// CachingResolver consults the id cache before the directory and records
// successful matches. Cache failures are logged and never fail a resolve.
type CachingResolver struct {
	next   Resolving
	store  Store
	logger *slog.Logger
}

// NewCachingResolver wraps next with store. A nil store disables caching.
func NewCachingResolver(next Resolving, store Store, logger *slog.Logger) *CachingResolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CachingResolver{next: next, store: store, logger: logging.NewComponentLogger(logger, "identity")}
}

// Resolve returns a cached match when one exists, otherwise delegates.
func (c *CachingResolver) Resolve(ctx context.Context, title, year string) (Match, error) {
	if c.store != nil {
		entry, ok, err := c.store.Lookup(ctx, title, year)
		switch {
		case err != nil:
			logging.WarnWithContext(c.logger, "id cache lookup failed", "idcache_lookup_failed",
				logging.Show(title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "falling back to directory search"))
		case ok:
			c.logger.Debug("series id served from cache",
				logging.Show(title),
				logging.TVDBID(entry.TVDBID))
			return Match{ExternalID: entry.TVDBID, MatchedName: entry.MatchedName, Score: 100, Cached: true}, nil
		}
	}

	match, err := c.next.Resolve(ctx, title, year)
	if err != nil {
		return Match{}, err
	}
	if c.store != nil && match.ExternalID > 0 && !match.UsedFallback {
		entry := idcache.Entry{Title: title, Year: year, TVDBID: match.ExternalID, MatchedName: match.MatchedName}
		if err := c.store.Store(ctx, entry); err != nil {
			logging.WarnWithContext(c.logger, "id cache store failed", "idcache_store_failed",
				logging.Show(title),
				logging.Error(err),
				logging.String(logging.FieldImpact, "next add of this series searches again"))
		}
	}
	return match, nil
}

// Forget evicts the cached id for title and year. The catalog rejected it, so
// the next resolve must go back to the directory.
func (c *CachingResolver) Forget(ctx context.Context, title, year string) {
	if c.store == nil {
		return
	}
	err := c.store.Remove(ctx, title, year)
	switch {
	case err == nil:
		c.logger.Info("evicted rejected series id", logging.Show(title), logging.Year(year))
	case errors.Is(err, idcache.ErrNotCached):
	default:
		logging.WarnWithContext(c.logger, "id cache evict failed", "idcache_evict_failed",
			logging.Show(title),
			logging.Error(err),
			logging.String(logging.FieldImpact, "next add of this series reuses the rejected id"))
	}
}
