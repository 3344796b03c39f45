package testsupport

import (
	"context"
	"testing"

	"sonashow/internal/config"
	"sonashow/internal/idcache"
)

// MustOpenIDCache opens the id cache under cfg's data directory and registers cleanup.
func MustOpenIDCache(t testing.TB, cfg *config.Config) *idcache.Cache {
	t.Helper()

	cache, err := idcache.Open(context.Background(), cfg.IDCachePath(), nil)
	if err != nil {
		t.Fatalf("idcache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
