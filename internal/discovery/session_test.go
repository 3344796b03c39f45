package discovery_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"sonashow/internal/catalog"
	"sonashow/internal/discovery"
	"sonashow/internal/notifications"
	"sonashow/internal/services/tmdb"
)

// fakeSource maps seed titles to ids and ids to related shows.
type fakeSource struct {
	mu        sync.Mutex
	ids       map[string]int64
	related   map[int64][]tmdb.Show
	idErr     map[string]error
	lookups   []string
	fetches   []int64
	onLookup  func(title string)
	onRelated func(id int64)
}

func (f *fakeSource) IdentifierFor(_ context.Context, title string) (int64, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, title)
	hook := f.onLookup
	f.mu.Unlock()
	if hook != nil {
		hook(title)
	}
	if err := f.idErr[title]; err != nil {
		return 0, err
	}
	id, ok := f.ids[title]
	if !ok {
		return 0, tmdb.ErrNotFound
	}
	return id, nil
}

func (f *fakeSource) RelatedTo(_ context.Context, id int64) ([]tmdb.Show, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, id)
	hook := f.onRelated
	f.mu.Unlock()
	if hook != nil {
		hook(id)
	}
	return f.related[id], nil
}

func (f *fakeSource) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lookups)
}

func show(name string, rating float64, votes int) tmdb.Show {
	return tmdb.Show{Name: name, VoteAverage: rating, VoteCount: votes, OriginalLanguage: "en", FirstAirDate: "2020-01-01"}
}

func identity(n int, swap func(i, j int)) {}

func defaultFilters() discovery.Filters {
	return discovery.Filters{MinimumRating: 5.5, MinimumVotes: 50, Language: "all"}
}

func newSession(idx *catalog.Index, src discovery.Source, sink notifications.Sink) *discovery.Session {
	return discovery.NewSession(idx, src, sink, discovery.Options{Filters: defaultFilters(), Shuffle: identity})
}

func publishedNames(t *testing.T, rec *notifications.Recorder) []string {
	t.Helper()
	var names []string
	for _, msg := range rec.Events(notifications.EventMoreShowsLoaded) {
		batch, ok := msg.Payload.([]discovery.Candidate)
		if !ok || len(batch) != 1 {
			t.Fatalf("expected single-candidate payload, got %#v", msg.Payload)
		}
		names = append(names, batch[0].Name)
	}
	return names
}

func TestStartRejectsEmptySelection(t *testing.T) {
	rec := &notifications.Recorder{}
	session := newSession(catalog.New(), &fakeSource{}, rec)

	if err := session.Start([]string{" ", ""}); !errors.Is(err, discovery.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if session.State() != discovery.StateIdle {
		t.Fatalf("expected idle state, got %s", session.State())
	}
	if session.Running() {
		t.Fatal("expected session to remain cancelled")
	}
	result, err := session.RunRound(context.Background())
	if err != nil || !result.Skipped {
		t.Fatalf("expected skipped round, got %+v %v", result, err)
	}
	if len(rec.Events(notifications.EventClear)) != 1 {
		t.Fatal("expected clear event on start")
	}
}

func TestRoundPublishesFilteredCandidatesInOrder(t *testing.T) {
	idx := catalog.New()
	idx.ReplaceAll([]string{"Dark", "Severance (2022)"})
	src := &fakeSource{
		ids: map[string]int64{"Dark": 1},
		related: map[int64][]tmdb.Show{1: {
			show("1899", 7.4, 900),
			show("Low Rated", 5.4, 900),
			show("Few Votes", 8, 49),
			show("severance", 8.7, 2000),
			show("Boundary", 5.5, 50),
			show("1899", 7.4, 900),
		}},
	}
	rec := &notifications.Recorder{}
	session := newSession(idx, src, rec)
	if err := session.Start([]string{"Dark"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	result, err := session.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if result.Found != 2 || result.Exhausted || result.Cancelled {
		t.Fatalf("unexpected result: %+v", result)
	}
	got := publishedNames(t, rec)
	if fmt.Sprint(got) != "[1899 Boundary]" {
		t.Fatalf("unexpected published order: %v", got)
	}
	if session.State() != discovery.StateRoundComplete {
		t.Fatalf("expected round_complete, got %s", session.State())
	}
	cands := session.Candidates()
	if len(cands) != 2 || cands[0].SourceSeed != "Dark" || cands[0].Year != "2020" {
		t.Fatalf("unexpected candidates: %+v", cands)
	}
	if len(rec.Events(notifications.EventToast)) != 0 {
		t.Fatal("did not expect exhaustion toast")
	}
}

func TestRoundsNeverRepeatCandidates(t *testing.T) {
	src := &fakeSource{
		ids: map[string]int64{"A": 1, "B": 2},
		related: map[int64][]tmdb.Show{
			1: {show("X", 8, 100), show("Y", 8, 100)},
			2: {show("Y", 8, 100), show("Z", 8, 100)},
		},
	}
	rec := &notifications.Recorder{}
	session := newSession(catalog.New(), src, rec)
	if err := session.Start([]string{"A", "B"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	previous := 0
	for round := 0; round < 3; round++ {
		if _, err := session.RunRound(context.Background()); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		cands := session.Candidates()
		if len(cands) < previous {
			t.Fatalf("candidate list shrank from %d to %d", previous, len(cands))
		}
		previous = len(cands)
		seen := map[string]bool{}
		for _, c := range cands {
			if seen[c.Name] {
				t.Fatalf("duplicate candidate %q after round %d", c.Name, round)
			}
			seen[c.Name] = true
		}
	}
	if previous != 3 {
		t.Fatalf("expected 3 unique candidates, got %d", previous)
	}
	if toasts := rec.Events(notifications.EventToast); len(toasts) != 2 {
		t.Fatalf("expected rounds 2 and 3 to be exhausted, got %d toasts", len(toasts))
	}
}

func TestOwnedTitlesNeverEmitted(t *testing.T) {
	idx := catalog.New()
	idx.ReplaceAll([]string{"The Bear", "Shōgun"})
	src := &fakeSource{
		ids:     map[string]int64{"Seed": 1},
		related: map[int64][]tmdb.Show{1: {show("the bear", 8, 100), show("Shogun", 8, 100), show("Andor", 8, 100)}},
	}
	rec := &notifications.Recorder{}
	session := newSession(idx, src, rec)
	_ = session.Start([]string{"Seed"})
	if _, err := session.RunRound(context.Background()); err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	for _, name := range publishedNames(t, rec) {
		if idx.Contains(name) {
			t.Fatalf("owned title %q was emitted", name)
		}
	}
	if got := publishedNames(t, rec); len(got) != 1 || got[0] != "Andor" {
		t.Fatalf("unexpected published names: %v", got)
	}
}

func TestExhaustedRoundToastsOnce(t *testing.T) {
	src := &fakeSource{
		ids: map[string]int64{"A": 1, "B": 2},
		related: map[int64][]tmdb.Show{
			1: {show("Weak", 5.4, 500)},
			2: {show("Weaker", 3, 500)},
		},
	}
	rec := &notifications.Recorder{}
	session := newSession(catalog.New(), src, rec)
	_ = session.Start([]string{"A", "B"})

	result, err := session.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if result.Found != 0 || !result.Exhausted {
		t.Fatalf("expected exhausted round, got %+v", result)
	}
	toasts := rec.Events(notifications.EventToast)
	if len(toasts) != 1 {
		t.Fatalf("expected exactly one toast, got %d", len(toasts))
	}
	toast, ok := toasts[0].Payload.(notifications.Toast)
	if !ok || toast.Title != "Search Exhausted" || toast.Message != "Try selecting more shows from existing Sonarr library" {
		t.Fatalf("unexpected toast: %#v", toasts[0].Payload)
	}
	if session.State() != discovery.StateRoundComplete || session.LastFound() != 0 {
		t.Fatalf("expected round_complete with zero found, got %s/%d", session.State(), session.LastFound())
	}
}

func TestSeedFailuresAreSkipped(t *testing.T) {
	src := &fakeSource{
		ids:     map[string]int64{"Good": 2},
		idErr:   map[string]error{"Broken": errors.New("transport error")},
		related: map[int64][]tmdb.Show{2: {show("Found", 8, 100)}},
	}
	rec := &notifications.Recorder{}
	session := newSession(catalog.New(), src, rec)
	_ = session.Start([]string{"Broken", "Missing", "Good"})

	result, err := session.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if result.Found != 1 || len(src.fetches) != 1 {
		t.Fatalf("expected failed seeds to be skipped, got %+v fetches=%v", result, src.fetches)
	}
}

func TestSampleIsBoundedAndWithoutReplacement(t *testing.T) {
	seeds := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	src := &fakeSource{ids: map[string]int64{}}
	session := discovery.NewSession(catalog.New(), src, nil, discovery.Options{Filters: defaultFilters()})
	_ = session.Start(seeds)

	result, _ := session.RunRound(context.Background())
	if len(result.Sampled) != discovery.DefaultSampleSize {
		t.Fatalf("expected %d sampled seeds, got %v", discovery.DefaultSampleSize, result.Sampled)
	}
	seen := map[string]bool{}
	for _, name := range result.Sampled {
		if seen[name] {
			t.Fatalf("seed %q sampled twice", name)
		}
		seen[name] = true
	}
}

func TestStopBetweenSeedsKeepsPublishedCandidates(t *testing.T) {
	src := &fakeSource{
		ids: map[string]int64{"First": 1, "Second": 2},
		related: map[int64][]tmdb.Show{
			1: {show("Early", 8, 100)},
			2: {show("Late", 8, 100)},
		},
	}
	var session *discovery.Session
	rec := &notifications.Recorder{}
	sink := notifications.Fanout{rec, notifications.SinkFunc(func(event string, _ any) {
		if event == notifications.EventMoreShowsLoaded {
			session.Stop()
		}
	})}
	session = newSession(catalog.New(), src, sink)
	_ = session.Start([]string{"First", "Second"})

	result, err := session.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if !result.Cancelled || result.Exhausted {
		t.Fatalf("expected cancelled round, got %+v", result)
	}
	if src.lookupCount() != 1 {
		t.Fatalf("expected no lookups after stop, got %v", src.lookups)
	}
	if got := publishedNames(t, rec); len(got) != 1 || got[0] != "Early" {
		t.Fatalf("unexpected published names: %v", got)
	}
	if cands := session.Candidates(); len(cands) != 1 || cands[0].Name != "Early" {
		t.Fatalf("expected published candidate to be kept, got %+v", cands)
	}
	if session.State() != discovery.StateCancelled {
		t.Fatalf("expected cancelled state, got %s", session.State())
	}
	if len(rec.Events(notifications.EventToast)) != 0 {
		t.Fatal("cancelled round should not report exhaustion")
	}
	if again, _ := session.RunRound(context.Background()); !again.Skipped {
		t.Fatal("expected rounds to be skipped after stop")
	}
}

func TestStopDuringLookupPreventsFetch(t *testing.T) {
	var session *discovery.Session
	src := &fakeSource{
		ids:     map[string]int64{"Only": 1},
		related: map[int64][]tmdb.Show{1: {show("Never", 8, 100)}},
	}
	src.onLookup = func(string) { session.Stop() }
	session = newSession(catalog.New(), src, nil)
	_ = session.Start([]string{"Only"})

	if _, err := session.RunRound(context.Background()); err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if len(src.fetches) != 0 {
		t.Fatalf("expected no recommendations fetch after stop, got %v", src.fetches)
	}
}

func TestRunRoundIsNotReentrant(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{
		ids:     map[string]int64{"Seed": 1},
		related: map[int64][]tmdb.Show{1: {show("Only", 8, 100)}},
	}
	src.onRelated = func(int64) {
		close(entered)
		<-release
	}
	session := newSession(catalog.New(), src, nil)
	_ = session.Start([]string{"Seed"})

	done := make(chan discovery.RoundResult)
	go func() {
		result, _ := session.RunRound(context.Background())
		done <- result
	}()
	<-entered
	if session.State() != discovery.StateSearching {
		t.Fatalf("expected searching state, got %s", session.State())
	}
	second, _ := session.RunRound(context.Background())
	if !second.Skipped {
		t.Fatalf("expected concurrent round to be skipped, got %+v", second)
	}
	close(release)
	if first := <-done; first.Found != 1 {
		t.Fatalf("expected first round to find one candidate, got %+v", first)
	}
}

func TestStartDuringRoundDiscardsStaleRound(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	src := &fakeSource{
		ids: map[string]int64{"Old": 1, "New": 2},
		related: map[int64][]tmdb.Show{
			1: {show("Stale", 8, 100)},
			2: {show("Fresh", 8, 100)},
		},
	}
	src.onRelated = func(id int64) {
		if id != 1 {
			return
		}
		close(entered)
		<-release
	}
	rec := &notifications.Recorder{}
	session := newSession(catalog.New(), src, rec)
	_ = session.Start([]string{"Old"})

	done := make(chan discovery.RoundResult)
	go func() {
		result, _ := session.RunRound(context.Background())
		done <- result
	}()
	<-entered

	if err := session.Start([]string{"New"}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	fresh, err := session.RunRound(context.Background())
	if err != nil {
		t.Fatalf("RunRound returned error: %v", err)
	}
	if fresh.Skipped || fresh.Found != 1 {
		t.Fatalf("expected new session round to run, got %+v", fresh)
	}

	close(release)
	stale := <-done
	if !stale.Cancelled || stale.Found != 0 {
		t.Fatalf("expected stale round to be cancelled without results, got %+v", stale)
	}
	if got := publishedNames(t, rec); len(got) != 1 || got[0] != "Fresh" {
		t.Fatalf("unexpected published names: %v", got)
	}
	if cands := session.Candidates(); len(cands) != 1 || cands[0].Name != "Fresh" {
		t.Fatalf("unexpected candidates: %+v", cands)
	}
	if session.State() != discovery.StateRoundComplete {
		t.Fatalf("expected round_complete state, got %s", session.State())
	}
	if len(rec.Events(notifications.EventToast)) != 0 {
		t.Fatal("stale round should not report exhaustion")
	}
}

func TestStartResetsCandidates(t *testing.T) {
	src := &fakeSource{
		ids:     map[string]int64{"Seed": 1},
		related: map[int64][]tmdb.Show{1: {show("Again", 8, 100)}},
	}
	session := newSession(catalog.New(), src, nil)
	_ = session.Start([]string{"Seed"})
	firstID := session.ID()
	_, _ = session.RunRound(context.Background())

	_ = session.Start([]string{"Seed"})
	if len(session.Candidates()) != 0 {
		t.Fatal("expected Start to clear candidates")
	}
	if session.ID() == firstID {
		t.Fatal("expected a new session id")
	}
	result, _ := session.RunRound(context.Background())
	if result.Found != 1 {
		t.Fatalf("expected candidate to be rediscovered after reset, got %+v", result)
	}
}

func TestSetStatusAndSnapshot(t *testing.T) {
	related := make([]tmdb.Show, 0, 20)
	for i := 0; i < 20; i++ {
		related = append(related, show(fmt.Sprintf("Show %02d", i), 8, 100))
	}
	src := &fakeSource{ids: map[string]int64{"Seed": 1}, related: map[int64][]tmdb.Show{1: related}}
	session := newSession(catalog.New(), src, nil)
	_ = session.Start([]string{"Seed"})
	_, _ = session.RunRound(context.Background())

	updated, ok := session.SetStatus("Show 03", discovery.StatusAdded)
	if !ok || updated.Status != discovery.StatusAdded {
		t.Fatalf("unexpected SetStatus result: %+v %v", updated, ok)
	}
	if c, _ := session.Candidate("Show 03"); c.Status != discovery.StatusAdded {
		t.Fatalf("status not persisted: %+v", c)
	}
	if _, ok := session.SetStatus("Nope", discovery.StatusFailed); ok {
		t.Fatal("expected unknown candidate to be reported missing")
	}
	if snap := session.Snapshot(15); len(snap) != 15 {
		t.Fatalf("expected snapshot of 15, got %d", len(snap))
	}
	if snap := session.Snapshot(50); len(snap) != 20 {
		t.Fatalf("expected full snapshot, got %d", len(snap))
	}
	if len(session.Candidates()) != 20 {
		t.Fatal("snapshot must not mutate the candidate list")
	}
}
