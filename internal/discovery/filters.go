package discovery

import (
	"strings"

	"sonashow/internal/config"
	"sonashow/internal/language"
	"sonashow/internal/services/tmdb"
)

// Filters are the quality thresholds a recommendation must meet. Thresholds
// are inclusive.
type Filters struct {
	MinimumRating float64
	MinimumVotes  int
	// Language is an ISO 639-1 code, or "all" to accept every language.
	Language string
}

// FiltersFromConfig reads the discovery thresholds from configuration.
func FiltersFromConfig(cfg config.Discovery) Filters {
	return Filters{
		MinimumRating: cfg.MinimumRating,
		MinimumVotes:  cfg.MinimumVotes,
		Language:      cfg.LanguageChoice,
	}
}

// Rejection names the first filter a show failed, or "" when it passed.
type Rejection string

const (
	RejectNone     Rejection = ""
	RejectRating   Rejection = "rating"
	RejectVotes    Rejection = "votes"
	RejectLanguage Rejection = "language"
)

// Check applies rating, votes, then language, stopping at the first failure.
func (f Filters) Check(show tmdb.Show) Rejection {
	if show.VoteAverage < f.MinimumRating {
		return RejectRating
	}
	if show.VoteCount < f.MinimumVotes {
		return RejectVotes
	}
	choice := strings.ToLower(strings.TrimSpace(f.Language))
	if choice == "" || choice == config.LanguageChoiceAll {
		return RejectNone
	}
	if originalLanguage(show) != language.ToISO2(choice) {
		return RejectLanguage
	}
	return RejectNone
}

// Accept reports whether show passes every filter.
func (f Filters) Accept(show tmdb.Show) bool {
	return f.Check(show) == RejectNone
}
