package omdb

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
)

// ErrNotFound marks a title the API does not know. OMDb reports this with
// an HTTP 200 and a Response field of "False".
var ErrNotFound = errors.New("omdb title not found")

// Result is the OMDb payload for an exact-title lookup. OMDb years arrive
// as strings and may span a range for series, as in "2014-2017". Raw holds
// the payload exactly as the API returned it.
type Result struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	IMDBID   string `json:"imdbID"`
	Type     string `json:"Type"`
	Response string `json:"Response"`
	Error    string `json:"Error"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the provider fields and keeps a copy of the raw
// payload alongside them.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Result(decoded)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ReleaseYear returns the leading four-digit year, or zero when the field
// is empty or malformed.
func (r Result) ReleaseYear() int {
	year := strings.TrimSpace(r.Year)
	if len(year) < 4 {
		return 0
	}
	n, err := strconv.Atoi(year[:4])
	if err != nil {
		return 0
	}
	return n
}

// MediaType maps OMDb's Type field onto the organizer's movie/tv split.
func (r Result) MediaType() string {
	if strings.EqualFold(strings.TrimSpace(r.Type), "series") {
		return "tv"
	}
	return "movie"
}

// Fetcher defines the exact-title lookup the resolver uses as its
// fallback provider.
type Fetcher interface {
	Lookup(ctx context.Context, title string, year int) (*Result, error)
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

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

// New creates an OMDb client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Lookup fetches the record for an exact title, optionally pinned to a
// year. Unknown titles return ErrNotFound.
func (c *Client) Lookup(ctx context.Context, title string, year int) (*Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", title)
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Result
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	if !strings.EqualFold(payload.Response, "true") {
		reason := strings.TrimSpace(payload.Error)
		if reason == "" {
			reason = "no match"
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, reason)
	}
	return &payload, nil
}
