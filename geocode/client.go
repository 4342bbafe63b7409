package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client represents a client for the Nominatim search API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new client for the Nominatim search API
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   DefaultBaseURL,
		userAgent: userAgent,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    DefaultBaseURL,
		userAgent:  userAgent,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// Search returns the places matching params, best match first
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Place, error) {
	if strings.TrimSpace(params.Query) == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if params.Limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "must be non-negative"}
	}

	reqURL, err := c.buildURL(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if params.Language != "" {
		req.Header.Set("Accept-Language", params.Language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: "search", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Operation: "read response", Err: err}
	}

	var places []Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return places, nil
}

// Lookup returns the best match for query, or ErrNotFound
func (c *Client) Lookup(ctx context.Context, query string) (Place, error) {
	places, err := c.Search(ctx, SearchParams{Query: query, Limit: 1})
	if err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, fmt.Errorf("%q: %w", query, ErrNotFound)
	}
	return places[0], nil
}

// buildURL constructs the search URL with query parameters
func (c *Client) buildURL(params SearchParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	u.Path = u.Path + "/search"

	query := u.Query()
	query.Set("format", "json")
	query.Set("q", params.Query)
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.CountryCodes != "" {
		query.Set("countrycodes", params.CountryCodes)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
