package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sonashow/internal/services"
)

const serviceName = "tmdb"

// ErrNotFound reports a search without results.
var ErrNotFound = fmt.Errorf("tmdb: %w", services.ErrNotFound)

// Show is one TV series as returned by search and recommendation endpoints.
type Show struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	OriginalName     string  `json:"original_name"`
	Overview         string  `json:"overview"`
	FirstAirDate     string  `json:"first_air_date"`
	GenreIDs         []int   `json:"genre_ids"`
	OriginalLanguage string  `json:"original_language"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	PosterPath       string  `json:"poster_path"`
}

// Response models a paginated TMDB result list.
type Response struct {
	Page         int    `json:"page"`
	Results      []Show `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
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

// New creates a TMDB client.
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
		// TMDB allows roughly 50 requests per second per IP.
		limiter: rate.NewLimiter(rate.Limit(40), 20),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchTV searches TMDB for series matching query.
func (c *Client) SearchTV(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	var payload Response
	if err := c.get(ctx, "/search/tv", params, "search", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// IdentifierFor returns the TMDB id of the first search result for title.
func (c *Client) IdentifierFor(ctx context.Context, title string) (int64, error) {
	resp, err := c.SearchTV(ctx, title)
	if err != nil {
		return 0, err
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return resp.Results[0].ID, nil
}

// RelatedTo returns the recommendations TMDB lists for the series id.
func (c *Client) RelatedTo(ctx context.Context, id int64) ([]Show, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid tmdb id %d", id)
	}
	var payload Response
	path := "/tv/" + strconv.FormatInt(id, 10) + "/recommendations"
	if err := c.get(ctx, path, url.Values{}, "recommendations", &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, operation string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return services.DoJSON(c.httpClient, req, serviceName, operation, out)
}
