package sonarr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sonashow/internal/services"
	"sonashow/internal/services/sonarr"
)

func TestNewRequiresAddress(t *testing.T) {
	if _, err := sonarr.New(" ", "key", time.Second); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestListSeriesSendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/series" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		_, _ = w.Write([]byte(`[{"id":1,"title":"Dark","year":2017,"tvdbId":334824},{"id":2,"title":"Shōgun (2024)","year":2024}]`))
	}))
	t.Cleanup(server.Close)

	client, err := sonarr.New(server.URL+"/", "secret", time.Second)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	series, err := client.ListSeries(context.Background())
	if err != nil {
		t.Fatalf("ListSeries returned error: %v", err)
	}
	if len(series) != 2 || series[0].Title != "Dark" || series[0].TVDBID != 334824 || series[1].Title != "Shōgun (2024)" {
		t.Fatalf("unexpected series: %+v", series)
	}
}

func TestListSeriesNonSuccessIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, _ := sonarr.New(server.URL, "bad", time.Second)
	if _, err := client.ListSeries(context.Background()); !services.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestAddSeriesCreated(t *testing.T) {
	var received sonarr.AddRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9}`))
	}))
	t.Cleanup(server.Close)

	client, _ := sonarr.New(server.URL, "secret", time.Second)
	result, err := client.AddSeries(context.Background(), sonarr.AddRequest{
		Title:            "Slow Horses",
		QualityProfileID: 4,
		TitleSlug:        "slow-horses",
		TVDBID:           393304,
		Monitored:        true,
		AddOptions:       sonarr.AddOptions{Monitor: "all"},
	})
	if err != nil {
		t.Fatalf("AddSeries returned error: %v", err)
	}
	if !result.Created {
		t.Fatalf("expected created result, got %+v", result)
	}
	if received.TVDBID != 393304 || received.QualityProfileID != 4 || received.AddOptions.Monitor != "all" {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestAddSeriesRejection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"validation list", `[{"propertyName":"TvdbId","errorMessage":"This series has already been added"}]`, "This series has already been added"},
		{"empty list", `[]`, "Unknown Error"},
		{"object message", `{"message":"Invalid Path"}`, "Invalid Path"},
		{"plain text", `boom`, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, _ := sonarr.New(server.URL, "secret", time.Second)
			result, err := client.AddSeries(context.Background(), sonarr.AddRequest{Title: "X"})
			if err != nil {
				t.Fatalf("AddSeries returned error: %v", err)
			}
			if result.Created || result.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected rejection, got %+v", result)
			}
			if result.RejectionMessage != tt.want {
				t.Fatalf("expected message %q, got %q", tt.want, result.RejectionMessage)
			}
		})
	}
}

func TestAddSeriesNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client, _ := sonarr.New(addr, "secret", time.Second)
	if _, err := client.AddSeries(context.Background(), sonarr.AddRequest{Title: "X"}); !services.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
