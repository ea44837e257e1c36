package debrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// ErrRateLimited marks a request the service refused with HTTP 429. The
// watcher backs off and retries; the client itself never sleeps.
var ErrRateLimited = errors.New("debrid rate limited")

// ErrRejected marks an item the service refused outright (malformed
// torrent, unknown id, unprocessable magnet). Retrying will not help.
var ErrRejected = errors.New("debrid rejected item")

// Torrent is the handle returned when a torrent or magnet is added.
type Torrent struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// File is a single member file inside an added torrent.
type File struct {
	ID       int    `json:"id"`
	Path     string `json:"path"`
	Bytes    int64  `json:"bytes"`
	Selected int    `json:"selected"`
}

// Torrent lifecycle states reported by the info endpoint. Only the ones
// the watcher branches on are named.
const (
	StatusMagnetConversion = "magnet_conversion"
	StatusWaitingSelection = "waiting_files_selection"
	StatusQueued           = "queued"
	StatusDownloading      = "downloading"
	StatusDownloaded       = "downloaded"
	StatusError            = "error"
	StatusVirus            = "virus"
	StatusDead             = "dead"
)

// Info describes an added torrent and its member files.
type Info struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Bytes    int64  `json:"bytes"`
	Files    []File `json:"files"`
}

// SelectionReady reports whether the service has finished inspecting the
// torrent and is waiting for a file selection.
func (i Info) SelectionReady() bool {
	return i.Status == StatusWaitingSelection && len(i.Files) > 0
}

// Failed reports whether the service gave up on the torrent.
func (i Info) Failed() bool {
	switch i.Status {
	case StatusError, StatusVirus, StatusDead:
		return true
	}
	return false
}

// Uploader defines the debrid operations the ingest watcher uses. The
// concrete Client satisfies it; tests substitute stubs.
type Uploader interface {
	AddTorrent(ctx context.Context, name string, data []byte) (Torrent, error)
	AddMagnet(ctx context.Context, magnet string) (Torrent, error)
	Info(ctx context.Context, id string) (Info, error)
	SelectFiles(ctx context.Context, id string, fileIDs []int) error
}

// Client talks to a debrid service over its REST API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

var _ Uploader = (*Client)(nil)

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

// New creates a debrid client.
func New(token, baseURL string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("debrid token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("debrid base url required")
	}
	client := &Client{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// AddTorrent uploads raw torrent file contents and returns the handle the
// service assigned.
func (c *Client) AddTorrent(ctx context.Context, name string, data []byte) (Torrent, error) {
	var added Torrent
	if len(data) == 0 {
		return added, fmt.Errorf("add torrent %q: %w: empty torrent file", name, ErrRejected)
	}
	err := c.do(ctx, http.MethodPut, "/torrents/addTorrent", "application/x-bittorrent", bytes.NewReader(data), &added)
	if err != nil {
		return added, fmt.Errorf("add torrent %q: %w", name, err)
	}
	return added, nil
}

// AddMagnet submits a magnet link and returns the handle the service
// assigned.
func (c *Client) AddMagnet(ctx context.Context, magnet string) (Torrent, error) {
	var added Torrent
	magnet = strings.TrimSpace(magnet)
	if !strings.HasPrefix(magnet, "magnet:") {
		return added, fmt.Errorf("add magnet: %w: not a magnet link", ErrRejected)
	}
	form := url.Values{}
	form.Set("magnet", magnet)
	err := c.do(ctx, http.MethodPost, "/torrents/addMagnet", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), &added)
	if err != nil {
		return added, fmt.Errorf("add magnet: %w", err)
	}
	return added, nil
}

// Info fetches the current state and member file listing of an added
// torrent.
func (c *Client) Info(ctx context.Context, id string) (Info, error) {
	var info Info
	id = strings.TrimSpace(id)
	if id == "" {
		return info, errors.New("torrent id required")
	}
	if err := c.do(ctx, http.MethodGet, "/torrents/info/"+url.PathEscape(id), "", nil, &info); err != nil {
		return info, fmt.Errorf("torrent info %s: %w", id, err)
	}
	return info, nil
}

// SelectFiles tells the service which member files to fetch.
func (c *Client) SelectFiles(ctx context.Context, id string, fileIDs []int) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("torrent id required")
	}
	if len(fileIDs) == 0 {
		return errors.New("at least one file id required")
	}
	ids := make([]string, 0, len(fileIDs))
	for _, fileID := range fileIDs {
		ids = append(ids, strconv.Itoa(fileID))
	}
	form := url.Values{}
	form.Set("files", strings.Join(ids, ","))
	err := c.do(ctx, http.MethodPost, "/torrents/selectFiles/"+url.PathEscape(id), "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), nil)
	if err != nil {
		return fmt.Errorf("select files %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return fmt.Errorf("build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		detail := strings.TrimSpace(string(excerpt))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("http 429 (latency=%v): %w", latency, ErrRateLimited)
		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			return fmt.Errorf("http %d (latency=%v): %w: %s", resp.StatusCode, latency, ErrRejected, detail)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("http %d (latency=%v): auth failed", resp.StatusCode, latency)
		default:
			return fmt.Errorf("http %d (latency=%v): %s", resp.StatusCode, latency, detail)
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
