package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sync"

	"github.com/iconidentify/xresolve/internal/config"
)

// Client resolves tweet URLs to direct video URLs by impersonating the
// public web client against the unofficial GraphQL backend. Credentials are
// bootstrapped lazily on the first resolve and live for the client's
// lifetime; each Client owns its HTTP client and header state, so separate
// instances never interfere.
type Client struct {
	httpClient *http.Client
	cfg        config.ResolverConfig
	logger     *slog.Logger

	mu    sync.Mutex
	creds *Credentials
}

// NewClient creates a new resolver client.
func NewClient(cfg config.ResolverConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// tweetIDRegex matches the canonical tweet URL shape on either accepted host.
var tweetIDRegex = regexp.MustCompile(`(?:twitter\.com|x\.com)/\w+/status/(\d+)`)

// ExtractTweetID extracts the numeric tweet ID from a tweet URL.
// Accepted shapes:
//
//	https://x.com/user/status/1234567890
//	https://twitter.com/user/status/1234567890?s=20
func ExtractTweetID(tweetURL string) (string, error) {
	matches := tweetIDRegex.FindStringSubmatch(tweetURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTweetURL, tweetURL)
	}
	return matches[1], nil
}

// ResolveBestVideo resolves a tweet URL to its highest-bitrate MP4 variant:
// extract the ID, ensure credentials, fetch the detail envelope, extract the
// variants, select the best. Every failure is terminal and typed; nothing is
// retried.
func (c *Client) ResolveBestVideo(ctx context.Context, tweetURL string) (VideoVariant, error) {
	tweetID, err := ExtractTweetID(tweetURL)
	if err != nil {
		return VideoVariant{}, err
	}

	creds, err := c.ensureCredentials(ctx)
	if err != nil {
		return VideoVariant{}, &ResolveError{TweetID: tweetID, Op: "bootstrap", Err: err}
	}

	envelope, err := c.fetchTweetDetail(ctx, creds, tweetID)
	if err != nil {
		return VideoVariant{}, &ResolveError{TweetID: tweetID, Op: "fetch", Err: err}
	}

	variants, err := extractVariants(envelope)
	if err != nil {
		return VideoVariant{}, &ResolveError{TweetID: tweetID, Op: "extract", Err: err}
	}
	if len(variants) == 0 {
		return VideoVariant{}, &ResolveError{
			TweetID: tweetID,
			Op:      "extract",
			Err:     fmt.Errorf("%w: no MP4 variants", ErrNoVideoFound),
		}
	}

	best := selectBestVariant(variants)
	c.logger.Info("resolved video",
		"tweet_id", tweetID,
		"bitrate", best.Bitrate,
		"variants", len(variants),
	)
	return best, nil
}

// fetchTweetDetail performs the authenticated GraphQL GET for one tweet.
func (c *Client) fetchTweetDetail(ctx context.Context, creds *Credentials, tweetID string) (*responseEnvelope, error) {
	detailURL := buildDetailURL(c.cfg.GraphQLURL, tweetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, detailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create detail request: %v", ErrBackendRequest, err)
	}
	c.applyAuthHeaders(req, creds)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBackendRequest, resp.StatusCode)
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrMalformedResponse, err)
	}
	return &envelope, nil
}
