package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// Credentials are the ephemeral tokens the backend requires: the application
// bearer token embedded in the public web client bundle, and the guest
// session token issued by the activation endpoint. Populated once per client
// instance; never refreshed or persisted.
type Credentials struct {
	BearerToken string
	GuestToken  string
}

// bearerTokenRegex matches the bearer token inside the bundle text: a fixed
// literal prefix followed by everything up to the closing quote.
var bearerTokenRegex = regexp.MustCompile(`AAAAAAAAA[^"]+`)

// ensureCredentials returns the client's credentials, bootstrapping them on
// first use. The mutex is held across the whole bootstrap so concurrent first
// callers block and then share the single result instead of racing their own
// bootstraps.
func (c *Client) ensureCredentials(ctx context.Context) (*Credentials, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds != nil {
		return c.creds, nil
	}

	creds, err := c.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	c.creds = creds
	c.logger.Info("guest session established")
	return creds, nil
}

// bootstrap scrapes a bearer token from the web client bundle and trades it
// for a guest token at the activation endpoint.
func (c *Client) bootstrap(ctx context.Context) (*Credentials, error) {
	bearer, err := c.fetchBearerToken(ctx)
	if err != nil {
		return nil, err
	}

	guest, err := c.activateGuestToken(ctx, bearer)
	if err != nil {
		return nil, err
	}

	return &Credentials{BearerToken: bearer, GuestToken: guest}, nil
}

func (c *Client) fetchBearerToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BundleURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create bundle request: %v", ErrCredentialExtraction, err)
	}
	c.applyBaseHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch bundle: %v", ErrCredentialExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: bundle returned status %d", ErrCredentialExtraction, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read bundle: %v", ErrCredentialExtraction, err)
	}

	match := bearerTokenRegex.Find(body)
	if match == nil {
		return "", fmt.Errorf("%w: no bearer token in bundle (stale bundle URL or pattern?)", ErrCredentialExtraction)
	}
	return string(match), nil
}

func (c *Client) activateGuestToken(ctx context.Context, bearer string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ActivateURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create activation request: %v", ErrCredentialExtraction, err)
	}
	c.applyBaseHeaders(req)
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: guest activation: %v", ErrCredentialExtraction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: guest activation returned status %d", ErrCredentialExtraction, resp.StatusCode)
	}

	var activation struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&activation); err != nil {
		return "", fmt.Errorf("%w: decode activation response: %v", ErrCredentialExtraction, err)
	}
	if activation.GuestToken == "" {
		return "", fmt.Errorf("%w: activation response missing guest_token", ErrCredentialExtraction)
	}
	return activation.GuestToken, nil
}

// applyBaseHeaders sets the browser-identifying headers every outbound
// request carries. The endpoint rejects requests without a plausible client
// fingerprint. Headers are attached per request from instance config, never
// installed as shared client defaults.
func (c *Client) applyBaseHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", c.cfg.AcceptLanguage)
}

// applyAuthHeaders adds the credential headers for GraphQL calls on top of
// the base set.
func (c *Client) applyAuthHeaders(req *http.Request, creds *Credentials) {
	c.applyBaseHeaders(req)
	req.Header.Set("Authorization", "Bearer "+creds.BearerToken)
	req.Header.Set("x-guest-token", creds.GuestToken)
}
