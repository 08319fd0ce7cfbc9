package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	apiURL   = "https://api.spotify.com/v1"
	tokenURL = "https://accounts.spotify.com/api/token"

	// DefaultBatchSize is the number of track ids sent per audio-features
	// request.
	DefaultBatchSize = 20

	// pageLimit is the number of playlist entries requested per page.
	pageLimit = 100

	defaultAttempts = 5
)

// Config carries the collector's construction-time settings. Loaded once
// at startup and immutable afterward.
type Config struct {
	ClientID     string
	ClientSecret string

	// BatchSize caps ids per audio-features request. Zero means
	// DefaultBatchSize.
	BatchSize int

	// Attempts bounds tries per request, including the first. Zero means
	// the default.
	Attempts uint

	Log *logrus.Entry
}

// Client talks to the Spotify Web API. All requests share a limiter so
// paged and batched calls stay under the API's request rate.
type Client struct {
	http      *http.Client
	baseURL   string
	limiter   *rate.Limiter
	batchSize int
	attempts  uint
	log       *logrus.Entry
}

// New builds a Client that authenticates with the client-credentials
// flow. The context scopes token refreshes for the client's lifetime.
func New(ctx context.Context, cfg Config) *Client {
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	c := NewWithHTTPClient(creds.Client(ctx), apiURL, cfg.Log)
	if cfg.BatchSize > 0 {
		c.batchSize = cfg.BatchSize
	}
	if cfg.Attempts > 0 {
		c.attempts = cfg.Attempts
	}
	return c
}

// NewWithHTTPClient builds a Client over an explicit HTTP client and base
// URL. Tests use it to point at a local server without auth.
func NewWithHTTPClient(httpClient *http.Client, baseURL string, log *logrus.Entry) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(rate.Every(1*time.Second), 1),
		batchSize: DefaultBatchSize,
		attempts:  defaultAttempts,
		log:       log,
	}
}

// PlaylistTracks pages through a playlist and returns its tracks
// flattened for storage. Entries without a catalog id (local files,
// removed tracks) are dropped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	var tracks []PlaylistTrack
	offset := 0
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var page playlistTracksPage
		err := retry.Do(
			func() error {
				var err error
				page, err = c.playlistTracksPage(ctx, playlistID, pageLimit, offset)
				return err
			},
			c.retryOptions()...,
		)
		if err != nil {
			return nil, fmt.Errorf("fetching playlist %s at offset %d: %w", playlistID, offset, err)
		}

		for _, item := range page.Items {
			if item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, flattenTrack(item.Track))
		}

		c.log.WithFields(logrus.Fields{
			"playlist": playlistID,
			"offset":   offset,
			"total":    page.Total,
		}).Debug("fetched playlist page")

		offset += len(page.Items)
		if page.Next == "" || len(page.Items) == 0 || offset >= page.Total {
			break
		}
	}

	return tracks, nil
}

// AudioFeatures fetches feature records for the given track ids in
// contiguous chunks of the configured batch size. Rate-limited chunks are
// retried after the server's cooldown; a chunk that still fails is logged
// and skipped so the rest of the run keeps its results. Auth failures
// abort immediately.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) ([]AudioFeatures, error) {
	var features []AudioFeatures
	for _, chunk := range chunkIDs(ids, c.batchSize) {
		if err := c.limiter.Wait(ctx); err != nil {
			return features, err
		}

		var chunkFeatures []AudioFeatures
		err := retry.Do(
			func() error {
				var err error
				chunkFeatures, err = c.audioFeaturesChunk(ctx, chunk)
				return err
			},
			c.retryOptions()...,
		)
		if err != nil {
			if IsAuthFailure(err) {
				return features, fmt.Errorf("fetching audio features: %w", err)
			}
			if ctx.Err() != nil {
				return features, ctx.Err()
			}
			c.log.WithError(err).Warnf("skipping chunk of %d tracks", len(chunk))
			continue
		}

		features = append(features, chunkFeatures...)
	}

	return features, nil
}

func (c *Client) retryOptions() []retry.Option {
	return []retry.Option{
		retry.RetryIf(IsRateLimited),
		retry.DelayType(rateLimitDelay),
		retry.Attempts(c.attempts),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.WithError(err).Warnf("rate limited, retry %d", n+1)
		}),
	}
}

// rateLimitDelay honors the server's Retry-After when it sent one,
// falling back to the default backoff.
func rateLimitDelay(n uint, err error, config *retry.Config) time.Duration {
	if apiErr := asAPIError(err); apiErr != nil && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}

// chunkIDs partitions ids into contiguous chunks of at most size,
// preserving order. Every id lands in exactly one chunk.
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
