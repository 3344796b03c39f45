package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sonashow/internal/services"
)

const (
	serviceName = "sonarr"
	seriesPath  = "/api/v3/series"
)

// Series is an entry of the Sonarr library listing.
type Series struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	TVDBID int64  `json:"tvdbId"`
	Path   string `json:"path"`
}

// AddOptions controls what Sonarr does right after adding a series.
type AddOptions struct {
	Monitor                  string `json:"monitor"`
	SearchForMissingEpisodes bool   `json:"searchForMissingEpisodes"`
}

// AddRequest is the body of POST /api/v3/series.
type AddRequest struct {
	Title             string     `json:"title"`
	QualityProfileID  int        `json:"qualityProfileId"`
	MetadataProfileID int        `json:"metadataProfileId"`
	TitleSlug         string     `json:"titleSlug"`
	RootFolderPath    string     `json:"rootFolderPath"`
	TVDBID            int64      `json:"tvdbId"`
	SeasonFolder      bool       `json:"seasonFolder"`
	Monitored         bool       `json:"monitored"`
	AddOptions        AddOptions `json:"addOptions"`
}

// AddResult reports how Sonarr answered an add request.
type AddResult struct {
	Created          bool
	StatusCode       int
	RejectionMessage string
}

// Client talks to one Sonarr instance.
type Client struct {
	address    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Sonarr client. The timeout bounds every request.
func New(address, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	address = strings.TrimRight(strings.TrimSpace(address), "/")
	if address == "" {
		return nil, services.Wrap(services.ErrConfiguration, serviceName, "init", "address required", nil)
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &Client{
		address:    address,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListSeries returns every series in the library.
func (c *Client) ListSeries(ctx context.Context) ([]Series, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.address+seriesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)
	var series []Series
	if err := services.DoJSON(c.httpClient, req, serviceName, "list series", &series); err != nil {
		return nil, err
	}
	return series, nil
}

// AddSeries submits an add request. Rejections are not errors; only network
// failures are.
func (c *Client) AddSeries(ctx context.Context, payload AddRequest) (AddResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return AddResult{}, fmt.Errorf("encode add request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.address+seriesPath, bytes.NewReader(body))
	if err != nil {
		return AddResult{}, fmt.Errorf("build request: %w", err)
	}
	c.decorate(req)
	req.Header.Set("Content-Type", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return AddResult{}, services.Wrap(services.ErrTransport, serviceName, "add series",
			fmt.Sprintf("execute request (latency=%v)", time.Since(requestStart)), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		_, _ = io.Copy(io.Discard, resp.Body)
		return AddResult{Created: true, StatusCode: resp.StatusCode}, nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return AddResult{
		StatusCode:       resp.StatusCode,
		RejectionMessage: rejectionMessage(raw),
	}, nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// rejectionMessage extracts the first validation message Sonarr returned.
func rejectionMessage(body []byte) string {
	var failures []struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &failures); err == nil {
		if len(failures) > 0 && strings.TrimSpace(failures[0].ErrorMessage) != "" {
			return failures[0].ErrorMessage
		}
		return "Unknown Error"
	}
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &single); err == nil && strings.TrimSpace(single.Message) != "" {
		return single.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return "Unknown Error"
}
