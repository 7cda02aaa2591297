// Package worldtime fetches the current time of a timezone from a
// worldtimeapi.org compatible service.
package worldtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultZone is the timezone the demo shows
const DefaultZone = "America/Manaus"

// FallbackTitle is used when a snapshot lacks timezone or datetime
const FallbackTitle = "gentexts (invalid time data)"

// maxBodyBytes caps how much of a reply is read
const maxBodyBytes = 64 << 10

var (
	ErrUnexpectedStatus = errors.New("unexpected status from world time API")
	ErrInvalidPayload   = errors.New("invalid world time payload")
)

// Snapshot is the subset of the world time reply the application uses
type Snapshot struct {
	Timezone     string `json:"timezone"`
	Datetime     string `json:"datetime"`
	UTCOffset    string `json:"utc_offset"`
	Abbreviation string `json:"abbreviation"`
	UnixTime     int64  `json:"unixtime"`

	// Raw is the reply body as received
	Raw       []byte    `json:"-"`
	FetchedAt time.Time `json:"-"`
}

// Title formats "<timezone>, <datetime>", or FallbackTitle when either is missing
func (s Snapshot) Title() string {
	if s.Timezone == "" || s.Datetime == "" {
		return FallbackTitle
	}
	return s.Timezone + ", " + s.Datetime
}

// Client performs world time lookups over HTTP/1.1 or HTTP/2
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid world time URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid world time URL %q: scheme must be http or https", baseURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if _, err := http2.ConfigureTransports(transport); err != nil {
		return nil, fmt.Errorf("failed to configure HTTP/2: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		logger: logger.Named("worldtime"),
	}, nil
}

// Fetch looks up the current time of zone
func (c *Client) Fetch(ctx context.Context, zone string) (Snapshot, error) {
	if zone == "" {
		zone = DefaultZone
	}

	endpoint, err := url.JoinPath(c.baseURL, "api", "timezone", zone)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to build world time URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("world time request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read world time reply: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	snap.Raw = raw
	snap.FetchedAt = time.Now()

	c.logger.Debug("fetched world time",
		zap.String("zone", zone),
		zap.String("proto", resp.Proto),
		zap.Duration("took", time.Since(start)))

	return snap, nil
}
