package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sonashow/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	sonarr     *httptest.Server
	tmdb       *httptest.Server
	tvdb       *httptest.Server
}

// setupCLITestEnv writes a config pointing at stub Sonarr, TMDB, and TVDB
// servers. The library holds "Dark"; TMDB recommends 1899 for it and TVDB
// resolves 1899 (2022) to id 1.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	sonarr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v3/series":
			_, _ = w.Write([]byte(`[{"id":1,"title":"Dark","year":2017,"tvdbId":334824,"path":"/shows/Dark"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v3/series":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":2}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(sonarr.Close)

	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":70523,"name":"Dark"}]}`))
		case "/tv/70523/recommendations":
			_, _ = w.Write([]byte(`{"results":[` +
				`{"id":2,"name":"1899","first_air_date":"2022-11-17","genre_ids":[18,9648],"original_language":"de","vote_average":7.3,"vote_count":1200,"popularity":40.5},` +
				`{"id":3,"name":"Obscure","first_air_date":"2020-01-01","original_language":"en","vote_average":9.1,"vote_count":3}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(tmdb.Close)

	tvdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			_, _ = w.Write([]byte(`{"data":{"token":"tok"}}`))
		case "/search":
			_, _ = w.Write([]byte(`{"data":[{"name":"1899","year":"2022","tvdb_id":"1"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(tvdb.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithSonarr(sonarr.URL),
		testsupport.WithTMDB(tmdb.URL),
		testsupport.WithTVDB(tvdb.URL),
	)
	return &cliTestEnv{
		configPath: testsupport.WriteConfig(t, cfg),
		sonarr:     sonarr,
		tmdb:       tmdb,
		tvdb:       tvdb,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
