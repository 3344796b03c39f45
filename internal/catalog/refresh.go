package catalog

import (
	"context"

	"sonashow/internal/services/sonarr"
)

// Lister lists the series Sonarr already manages.
type Lister interface {
	ListSeries(ctx context.Context) ([]sonarr.Series, error)
}

// Refresh replaces the index with Sonarr's current library. On error the
// index is left untouched.
func (i *Index) Refresh(ctx context.Context, lister Lister) ([]Item, error) {
	series, err := lister.ListSeries(ctx)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(series))
	for _, s := range series {
		titles = append(titles, s.Title)
	}
	i.ReplaceAll(titles)
	return i.Items(), nil
}
