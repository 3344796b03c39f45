package discovery

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"sonashow/internal/catalog"
	"sonashow/internal/logging"
	"sonashow/internal/notifications"
	"sonashow/internal/services/tmdb"
)

// ErrEmptySelection is returned by Start when no seeds were selected.
var ErrEmptySelection = errors.New("no Sonarr shows selected")

// DefaultSampleSize is how many seeds a round queries.
const DefaultSampleSize = 5

// Exhaustion toast text.
const (
	ExhaustedTitle   = "Search Exhausted"
	ExhaustedMessage = "Try selecting more shows from existing Sonarr library"
)

// Source resolves seeds and fetches related series.
type Source interface {
	IdentifierFor(ctx context.Context, title string) (int64, error)
	RelatedTo(ctx context.Context, id int64) ([]tmdb.Show, error)
}

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateReady
	StateSearching
	StateRoundComplete
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StateRoundComplete:
		return "round_complete"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RoundResult summarizes one RunRound call.
type RoundResult struct {
	// Skipped is set when the call was a no-op because the session was idle,
	// cancelled, or already searching.
	Skipped   bool
	Sampled   []string
	Found     int
	Exhausted bool
	Cancelled bool
}

// Options tune a session.
type Options struct {
	Filters    Filters
	SampleSize int
	Logger     *slog.Logger
	// Shuffle permutes n elements. Defaults to math/rand/v2.Shuffle.
	Shuffle func(n int, swap func(i, j int))
}

// Session is the discovery engine state for one seed selection.
type Session struct {
	catalog    *catalog.Index
	source     Source
	sink       notifications.Sink
	filters    Filters
	sampleSize int
	shuffle    func(n int, swap func(i, j int))
	baseLogger *slog.Logger

	// pubMu orders candidate publication against Start's clear event.
	pubMu sync.Mutex

	mu         sync.Mutex
	id         string
	logger     *slog.Logger
	state      State
	seeds      []string
	all        []Candidate
	round      []Candidate
	names      map[string]struct{}
	cancelled  bool
	busy       bool
	busyGen    uint64
	generation uint64
	lastFound  int
}

// NewSession builds an idle session.
func NewSession(index *catalog.Index, source Source, sink notifications.Sink, opts Options) *Session {
	if sink == nil {
		sink = notifications.Nop{}
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Shuffle == nil {
		opts.Shuffle = rand.Shuffle
	}
	base := opts.Logger
	if base == nil {
		base = logging.NewNop()
	}
	base = logging.NewComponentLogger(base, "discovery")
	return &Session{
		catalog:    index,
		source:     source,
		sink:       sink,
		filters:    opts.Filters,
		sampleSize: opts.SampleSize,
		shuffle:    opts.Shuffle,
		baseLogger: base,
		logger:     base,
		state:      StateIdle,
		names:      make(map[string]struct{}),
		cancelled:  true,
	}
}

// Start seeds the session and clears previous results. An empty selection
// leaves the session cancelled and returns ErrEmptySelection.
func (s *Session) Start(seeds []string) error {
	clean := make([]string, 0, len(seeds))
	seen := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		seed = strings.TrimSpace(seed)
		if seed == "" {
			continue
		}
		if _, dup := seen[seed]; dup {
			continue
		}
		seen[seed] = struct{}{}
		clean = append(clean, seed)
	}

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.sink.Publish(notifications.EventClear, nil)

	s.mu.Lock()
	s.generation++
	s.all = nil
	s.round = nil
	s.names = make(map[string]struct{})
	s.lastFound = 0
	if len(clean) == 0 {
		s.seeds = nil
		s.cancelled = true
		if s.state != StateIdle {
			s.state = StateCancelled
		}
		logger := s.logger
		s.mu.Unlock()
		logging.WarnWithContext(logger, "discovery start rejected", "empty_selection",
			logging.String(logging.FieldErrorHint, "select at least one show from the library"))
		return ErrEmptySelection
	}
	s.seeds = clean
	s.cancelled = false
	s.state = StateReady
	s.id = uuid.NewString()
	s.logger = logging.WithSessionID(s.baseLogger, s.id)
	logger := s.logger
	s.mu.Unlock()

	logger.Info("discovery session started", logging.Int("seeds", len(clean)))
	return nil
}

// Stop cancels the session. A round in flight stops at its next checkpoint;
// candidates it already published are kept.
func (s *Session) Stop() {
	s.mu.Lock()
	already := s.cancelled
	s.cancelled = true
	if s.state != StateIdle {
		s.state = StateCancelled
	}
	logger := s.logger
	s.mu.Unlock()
	if !already {
		logger.Info("discovery session stopped")
	}
}

// RunRound performs one sample, query, filter, publish pass. It is a no-op
// when the session is idle, cancelled, or already running a round.
func (s *Session) RunRound(ctx context.Context) (RoundResult, error) {
	s.mu.Lock()
	if s.state == StateIdle || s.cancelled || (s.busy && s.busyGen == s.generation) {
		s.mu.Unlock()
		return RoundResult{Skipped: true}, nil
	}
	gen := s.generation
	s.busy = true
	s.busyGen = gen
	s.state = StateSearching
	s.round = nil
	sample := s.sampleLocked()
	logger := s.logger
	s.mu.Unlock()

	logger.Info("searching for new shows", logging.Int("sampled", len(sample)))

	found := 0
	interrupted := false
seeds:
	for _, seed := range sample {
		if s.stopped(ctx, gen) {
			interrupted = true
			break
		}
		id, err := s.source.IdentifierFor(ctx, seed)
		if err != nil {
			logging.WarnWithContext(logger, "seed lookup failed", "seed_lookup_failed",
				logging.Seed(seed),
				logging.Error(err),
				logging.String(logging.FieldImpact, "seed skipped for this round"))
			continue
		}
		if s.stopped(ctx, gen) {
			interrupted = true
			break
		}
		related, err := s.source.RelatedTo(ctx, id)
		if err != nil {
			logging.WarnWithContext(logger, "recommendations fetch failed", "recommendations_failed",
				logging.Seed(seed),
				logging.Int64("tmdb_id", id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "seed skipped for this round"))
			continue
		}
		for _, show := range related {
			if s.stopped(ctx, gen) {
				interrupted = true
				break seeds
			}
			if reason := s.filters.Check(show); reason != RejectNone {
				logger.Debug("recommendation filtered",
					logging.Show(show.Name),
					logging.String("reason", string(reason)))
				continue
			}
			if s.admit(gen, newCandidate(show, seed)) {
				found++
			}
		}
	}

	return s.finishRound(ctx, gen, sample, found, interrupted), nil
}

// admit dedups cand against the catalog and every candidate of this session,
// records it, and publishes it. It reports whether cand was new.
func (s *Session) admit(gen uint64, cand Candidate) bool {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	if s.generation != gen || s.cancelled {
		s.mu.Unlock()
		return false
	}
	if _, dup := s.names[cand.Name]; dup {
		s.mu.Unlock()
		return false
	}
	if s.catalog != nil && s.catalog.Contains(cand.Name) {
		s.mu.Unlock()
		return false
	}
	s.names[cand.Name] = struct{}{}
	s.round = append(s.round, cand)
	logger := s.logger
	s.mu.Unlock()

	logger.Debug("candidate discovered",
		logging.Show(cand.Name),
		logging.Seed(cand.SourceSeed))
	s.sink.Publish(notifications.EventMoreShowsLoaded, []Candidate{cand.clone()})
	return true
}

func (s *Session) finishRound(ctx context.Context, gen uint64, sample []string, found int, interrupted bool) RoundResult {
	result := RoundResult{Sampled: sample, Found: found}

	s.mu.Lock()
	if s.busyGen == gen {
		s.busy = false
	}
	if s.generation != gen {
		s.mu.Unlock()
		result.Cancelled = true
		return result
	}
	if ctx.Err() != nil {
		s.cancelled = true
	}
	if len(s.round) > 0 {
		s.all = append(s.all, s.round...)
	}
	s.round = nil
	s.lastFound = found
	result.Cancelled = s.cancelled || interrupted
	if s.cancelled {
		s.state = StateCancelled
	} else {
		s.state = StateRoundComplete
	}
	result.Exhausted = found == 0 && !result.Cancelled
	total := len(s.all)
	logger := s.logger
	s.mu.Unlock()

	switch {
	case result.Exhausted:
		logger.Info("search exhausted", logging.String("hint", ExhaustedMessage))
		s.sink.Publish(notifications.EventToast, notifications.Toast{Title: ExhaustedTitle, Message: ExhaustedMessage})
	case result.Cancelled:
		logger.Info("round cancelled", logging.Int("found", found))
	default:
		logger.Info("round complete", logging.Int("found", found), logging.Int("total", total))
	}
	return result
}

// stopped is the cooperative cancellation checkpoint.
func (s *Session) stopped(ctx context.Context, gen uint64) bool {
	if ctx.Err() != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled || s.generation != gen
}

// sampleLocked draws up to sampleSize seeds without replacement in random
// order. Callers hold s.mu.
func (s *Session) sampleLocked() []string {
	pool := append([]string(nil), s.seeds...)
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > s.sampleSize {
		pool = pool[:s.sampleSize]
	}
	return pool
}

// ID returns the identifier assigned by the last successful Start.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the session accepts further rounds.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled
}

// Seeds returns the current seed selection.
func (s *Session) Seeds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seeds...)
}

// LastFound returns how many candidates the last completed round found.
func (s *Session) LastFound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFound
}

// Candidates returns a copy of every candidate from completed rounds in
// discovery order.
func (s *Session) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Candidate, len(s.all))
	for i, cand := range s.all {
		out[i] = cand.clone()
	}
	return out
}

// Snapshot returns up to limit candidates for a newly connected client: a
// random sample when more exist, otherwise all of them shuffled.
func (s *Session) Snapshot(limit int) []Candidate {
	out := s.Candidates()
	s.shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Candidate looks up a candidate by exact name, including ones published by
// a round still in flight.
func (s *Session) Candidate(name string) (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findLocked(name); c != nil {
		return c.clone(), true
	}
	return Candidate{}, false
}

// SetStatus records an acquisition outcome on the named candidate and returns
// the updated copy.
func (s *Session) SetStatus(name string, status Status) (Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(name)
	if c == nil {
		return Candidate{}, false
	}
	c.Status = status
	return c.clone(), true
}

func (s *Session) findLocked(name string) *Candidate {
	for i := range s.all {
		if s.all[i].Name == name {
			return &s.all[i]
		}
	}
	for i := range s.round {
		if s.round[i].Name == name {
			return &s.round[i]
		}
	}
	return nil
}
