package tvdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"sonashow/internal/services"
)

const (
	serviceName = "tvdb"
	// tokenLeeway renews a cached token before TVDB would reject it.
	tokenLeeway = 5 * time.Minute
	// defaultTokenTTL applies when a token carries no exp claim.
	defaultTokenTTL = 24 * time.Hour
)

// SearchResult is one TVDB search hit.
type SearchResult struct {
	Name   string     `json:"name"`
	Year   FlexString `json:"year"`
	TVDBID FlexString `json:"tvdb_id"`
	Type   string     `json:"type"`
}

// ID returns the numeric TVDB id, or 0 when the hit carries none.
func (r SearchResult) ID() int64 {
	id, err := strconv.ParseInt(string(r.TVDBID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// FlexString accepts JSON strings and numbers; TVDB is inconsistent about
// which it sends for ids and years.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Client provides access to TheTVDB v4 API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
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

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLimiter overrides request pacing. A nil limiter disables pacing.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a TVDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, serviceName, "init", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, serviceName, "init", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Authenticate returns a bearer token, logging in only when the cached token
// is missing or about to expire.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expires) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	token, err := c.login(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = token
	c.expires = c.tokenDeadline(token)
	c.mu.Unlock()
	return token, nil
}

// Invalidate drops the cached token so the next Authenticate logs in again.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expires = time.Time{}
	c.mu.Unlock()
}

func (c *Client) login(ctx context.Context) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	body, err := json.Marshal(map[string]string{"apikey": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("encode login: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := services.DoJSON(c.httpClient, req, serviceName, "login", &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Data.Token) == "" {
		return "", services.Wrap(services.ErrTransport, serviceName, "login", "response carried no token", nil)
	}
	return payload.Data.Token, nil
}

func (c *Client) tokenDeadline(token string) time.Time {
	fallback := c.now().Add(defaultTokenTTL)
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fallback
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Add(-tokenLeeway)
}

// Search queries TVDB for series matching title. The title is sent
// form-encoded, with spaces as '+'.
func (c *Client) Search(ctx context.Context, title, token string) ([]SearchResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse tvdb url: %w", err)
	}
	endpoint.RawQuery = "query=" + url.QueryEscape(title) + "&type=series"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	var payload struct {
		Data []SearchResult `json:"data"`
	}
	if err := services.DoJSON(c.httpClient, req, serviceName, "search", &payload); err != nil {
		var statusErr *services.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			c.Invalidate()
		}
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
