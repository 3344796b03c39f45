package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sonashow/internal/daemon"
	"sonashow/internal/idcache"
	"sonashow/internal/testsupport"
)

func sonarrStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/series" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Api-Key") != "test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "title": "Dark", "tvdbId": 334824}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSonarr(sonarrStub(t).URL))
	d, err := daemon.New(cfg, testsupport.WriteConfig(t, cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running || status.Address == "" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Session != "idle" {
		t.Fatalf("expected idle session, got %q", status.Session)
	}

	resp, err := http.Post("http://"+status.Address+"/api/library/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("refresh request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	if d.Status().LibraryCount != 1 {
		t.Fatalf("expected one library series, got %d", d.Status().LibraryCount)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, "", nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Close()

	second, _ := daemon.New(cfg, "", nil)
	if err := second.Start(ctx); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestDaemonSettingsRebuildClients(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithSonarr(sonarrStub(t).URL))
	cfg.Sonarr.APIKey = "wrong"
	d, err := daemon.New(cfg, testsupport.WriteConfig(t, cfg), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Close()
	base := "http://" + d.Status().Address

	refresh := func() int {
		resp, err := http.Post(base+"/api/library/refresh", "application/json", nil)
		if err != nil {
			t.Fatalf("refresh request: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if code := refresh(); code != http.StatusBadGateway {
		t.Fatalf("expected refresh to fail with wrong key, got %d", code)
	}

	req, _ := http.NewRequest(http.MethodPut, base+"/api/settings", strings.NewReader(`{"sonarr_api_key":"test"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("settings request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settings status = %d", resp.StatusCode)
	}
	if code := refresh(); code != http.StatusOK {
		t.Fatalf("expected refresh to succeed after settings update, got %d", code)
	}
}

func TestDaemonOpensIDCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seed := testsupport.MustOpenIDCache(t, cfg)
	if err := seed.Store(context.Background(), idcache.Entry{Title: "Dark", Year: "2017", TVDBID: 334824}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	_ = seed.Close()

	d, err := daemon.New(cfg, "", nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d.Status().IDCachePath != cfg.IDCachePath() {
		t.Fatalf("unexpected cache path %q", d.Status().IDCachePath)
	}
}
