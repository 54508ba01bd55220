package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediaranker/internal/catalog"
)

// Response models the TMDB paginated search response.
type Response struct {
	Page         int              `json:"page"`
	Results      []catalog.Record `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// Credits models the combined_credits payload. Only cast entries are used.
type Credits struct {
	ID   int64            `json:"id"`
	Cast []catalog.Record `json:"cast"`
	Crew []catalog.Record `json:"crew"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey       string
	baseURL      string
	language     string
	includeAdult bool
	httpClient   *http.Client
}

var _ catalog.Catalog = (*Client)(nil)

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

// WithIncludeAdult toggles TMDB's include_adult search flag.
func WithIncludeAdult(include bool) Option {
	return func(c *Client) {
		c.includeAdult = include
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search runs a multi search for media or a person search, depending on category.
func (c *Client) Search(ctx context.Context, query string, category catalog.Category) ([]catalog.Record, error) {
	var (
		resp *Response
		err  error
	)
	if category == catalog.CategoryPerson {
		resp, err = c.SearchPerson(ctx, query)
	} else {
		resp, err = c.SearchMulti(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// PersonCredits returns the cast side of a person's combined credits.
func (c *Client) PersonCredits(ctx context.Context, personID int64) ([]catalog.Record, error) {
	credits, err := c.CombinedCredits(ctx, personID)
	if err != nil {
		return nil, err
	}
	return credits.Cast, nil
}

// SearchMulti searches movies, shows and people in one request.
func (c *Client) SearchMulti(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "/search/multi", "multi search", query)
}

// SearchPerson searches people by name.
func (c *Client) SearchPerson(ctx context.Context, query string) (*Response, error) {
	return c.search(ctx, "/search/person", "person search", query)
}

func (c *Client) search(ctx context.Context, path, label, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", strconv.FormatBool(c.includeAdult))

	var payload Response
	if err := c.get(ctx, path, label, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CombinedCredits fetches movie and TV credits for a person.
func (c *Client) CombinedCredits(ctx context.Context, personID int64) (*Credits, error) {
	if personID <= 0 {
		return nil, errors.New("person id must be positive")
	}
	var payload Credits
	path := fmt.Sprintf("/person/%d/combined_credits", personID)
	if err := c.get(ctx, path, "combined credits", url.Values{}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path, label string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", label, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
