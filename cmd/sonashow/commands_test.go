package main

import (
	"encoding/json"
	"testing"

	"sonashow/internal/services/sonarr"
)

func TestLibraryListsSeries(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"library"}, env.configPath)
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	requireContains(t, out, "Dark")
	requireContains(t, out, "334824")
	requireContains(t, out, "1 series")

	out, _, err = runCLI(t, []string{"library", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("library --json: %v", err)
	}
	var series []sonarr.Series
	if err := json.Unmarshal([]byte(out), &series); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(series) != 1 || series[0].Title != "Dark" {
		t.Fatalf("unexpected series %+v", series)
	}
}

func TestDiscoverPrintsFilteredCandidates(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"discover"}, env.configPath)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	requireContains(t, out, "1899")
	requireContains(t, out, "Drama, Mystery")
	requireContains(t, out, "German")
	requireNotContains(t, out, "Obscure")
}

func TestDiscoverRejectsUnknownSeed(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"discover", "--seed", "Not In Library"}, env.configPath); err == nil {
		t.Fatal("expected empty selection error")
	}
}

func TestAddDryRunPopulatesCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "--dry-run", "1899", "2022"}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "1899 (2022): Added")
	requireContains(t, out, "cached no")

	out, _, err = runCLI(t, []string{"add", "--dry-run", "1899", "2022"}, env.configPath)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	requireContains(t, out, "cached yes")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "1899")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 cached mappings")

	out, _, err = runCLI(t, []string{"cache", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("cache list after clear: %v", err)
	}
	requireContains(t, out, "Cache is empty")
}

func TestAddReportsNoMatch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"add", "--dry-run", "Something Else", "1999"}, env.configPath)
	if err == nil {
		t.Fatal("expected not added error")
	}
	requireContains(t, out, "No Matching Show for: 'Something Else'")
}

func TestNotifyTestWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"notify", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "ntfy_topic is not configured")
}

func TestCheckReportsEachService(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure: stub sonarr and tmdb lack health endpoints")
	}
	requireContains(t, out, "Data directory")
	requireContains(t, out, "Login ok")
	requireContains(t, out, "check failed (404)")
}
