package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sonashow/internal/config"
	"sonashow/internal/logging"
	"sonashow/internal/services/tvdb"
	"sonashow/internal/textutil"
)

var (
	// ErrAuthFailure means the directory rejected the credentials.
	ErrAuthFailure = errors.New("identity: directory authentication failed")
	// ErrLookupFailure means the directory search could not be completed.
	ErrLookupFailure = errors.New("identity: directory lookup failed")
	// ErrNotFound means no search hit satisfied the match rule.
	ErrNotFound = errors.New("identity: no matching series")
)

// matchThreshold is the exclusive similarity score a hit must exceed.
const matchThreshold = 90

// Directory is the series identity directory.
type Directory interface {
	Authenticate(ctx context.Context) (string, error)
	Search(ctx context.Context, title, token string) ([]tvdb.SearchResult, error)
}

// Scorer returns a similarity percentage in [0, 100].
type Scorer func(a, b string) int

// Policy selects how the title scores and the year check combine.
type Policy string

const (
	// PolicyLiteral accepts a>90, or b>90 with a matching year.
	PolicyLiteral Policy = config.MatchPolicyLiteral
	// PolicyYearRequired accepts a>90 or b>90, but only with a matching year.
	PolicyYearRequired Policy = config.MatchPolicyYearRequired
)

// Match is a resolved series identity.
type Match struct {
	ExternalID   int64
	MatchedName  string
	MatchedYear  string
	Score        int
	UsedFallback bool
	Cached       bool
}

// Options configure a Resolver.
type Options struct {
	Policy   Policy
	Fallback bool
	Scorer   Scorer
	Logger   *slog.Logger
}

// Resolver matches titles against a Directory.
type Resolver struct {
	directory Directory
	policy    Policy
	fallback  bool
	score     Scorer
	logger    *slog.Logger
}

// NewResolver constructs a Resolver. Unset options take the literal policy,
// no fallback, and the Levenshtein ratio scorer.
func NewResolver(directory Directory, opts Options) *Resolver {
	if opts.Policy == "" {
		opts.Policy = PolicyLiteral
	}
	if opts.Scorer == nil {
		opts.Scorer = textutil.Ratio
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{
		directory: directory,
		policy:    opts.Policy,
		fallback:  opts.Fallback,
		score:     opts.Scorer,
		logger:    logging.NewComponentLogger(logger, "identity"),
	}
}

// Resolve finds the series id for title and year.
func (r *Resolver) Resolve(ctx context.Context, title, year string) (Match, error) {
	token, err := r.directory.Authenticate(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrAuthFailure, err)
	}
	results, err := r.directory.Search(ctx, title, token)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %w", ErrLookupFailure, err)
	}

	titled := strings.ToLower(fmt.Sprintf("%s (%s)", title, year))
	folded := textutil.ASCII(strings.ToLower(title))
	for _, hit := range results {
		name := strings.ToLower(hit.Name)
		a := r.score(titled, name)
		b := r.score(folded, textutil.ASCII(name))
		yearMatch := string(hit.Year) == year
		if !r.accept(a, b, yearMatch) {
			r.logger.Debug("search hit rejected",
				logging.Show(title),
				logging.String("candidate", hit.Name),
				logging.Int("title_year_score", a),
				logging.Int("title_score", b),
				logging.Bool("year_match", yearMatch))
			continue
		}
		match := Match{ExternalID: hit.ID(), MatchedName: hit.Name, MatchedYear: string(hit.Year), Score: max(a, b)}
		attrs := append(logging.DecisionAttrs("identity_match", "accepted", "similarity above threshold"),
			logging.Show(title),
			logging.String("matched_name", hit.Name),
			logging.TVDBID(match.ExternalID),
			logging.Int("score", match.Score))
		r.logger.Info("series identified", logging.Args(attrs...)...)
		return match, nil
	}

	if r.fallback && len(results) > 0 {
		hit := results[0]
		attrs := append(logging.DecisionAttrs("identity_match", "fallback", "no hit passed the similarity rule"),
			logging.Show(title),
			logging.String("matched_name", hit.Name))
		r.logger.Info("series identified by fallback", logging.Args(attrs...)...)
		return Match{ExternalID: hit.ID(), MatchedName: hit.Name, MatchedYear: string(hit.Year), UsedFallback: true}, nil
	}
	return Match{}, fmt.Errorf("%w: %q (%s)", ErrNotFound, title, year)
}

func (r *Resolver) accept(a, b int, yearMatch bool) bool {
	switch r.policy {
	case PolicyYearRequired:
		return (a > matchThreshold || b > matchThreshold) && yearMatch
	default:
		return a > matchThreshold || (b > matchThreshold && yearMatch)
	}
}
