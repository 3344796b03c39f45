package discovery_test

import (
	"testing"

	"sonashow/internal/config"
	"sonashow/internal/discovery"
	"sonashow/internal/services/tmdb"
)

func TestFiltersBoundaryIsInclusive(t *testing.T) {
	f := discovery.Filters{MinimumRating: 5.5, MinimumVotes: 50, Language: "en"}
	if reason := f.Check(tmdb.Show{VoteAverage: 5.5, VoteCount: 50, OriginalLanguage: "en"}); reason != discovery.RejectNone {
		t.Fatalf("expected boundary show to pass, rejected by %q", reason)
	}
}

func TestFiltersOrder(t *testing.T) {
	f := discovery.Filters{MinimumRating: 5.5, MinimumVotes: 50, Language: "ja"}
	tests := []struct {
		name string
		show tmdb.Show
		want discovery.Rejection
	}{
		{"rating first", tmdb.Show{VoteAverage: 5, VoteCount: 0, OriginalLanguage: "en"}, discovery.RejectRating},
		{"votes second", tmdb.Show{VoteAverage: 9, VoteCount: 49, OriginalLanguage: "en"}, discovery.RejectVotes},
		{"language third", tmdb.Show{VoteAverage: 9, VoteCount: 500, OriginalLanguage: "en"}, discovery.RejectLanguage},
		{"passes", tmdb.Show{VoteAverage: 9, VoteCount: 500, OriginalLanguage: "ja"}, discovery.RejectNone},
		{"missing language is english", tmdb.Show{VoteAverage: 9, VoteCount: 500}, discovery.RejectLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Check(tt.show); got != tt.want {
				t.Fatalf("Check = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFiltersLanguageAllAndNames(t *testing.T) {
	all := discovery.FiltersFromConfig(config.Discovery{MinimumRating: 0, MinimumVotes: 0, LanguageChoice: "all"})
	if !all.Accept(tmdb.Show{OriginalLanguage: "ko"}) {
		t.Fatal("expected 'all' to accept every language")
	}
	named := discovery.Filters{Language: "Korean"}
	if !named.Accept(tmdb.Show{OriginalLanguage: "ko"}) {
		t.Fatal("expected language names to normalize to ISO codes")
	}
}
