package lastfm

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Base represents the root XML response from Last.fm API.
type Base struct {
	XMLName xml.Name `xml:"lfm"`
	Status  string   `xml:"status,attr"`
	Inner   []byte   `xml:",innerxml"`
}

// APIError represents an error response from the Last.fm API.
type APIError struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:",chardata"`
}

const (
	apiStatusOK     = "ok"
	apiStatusFailed = "failed"
)

// callOpts controls how a single API call is performed.
type callOpts struct {
	signed  bool // include an api_sig parameter
	session bool // bind the call to the authenticated session (adds sk)
	noCache bool // bypass the response cache for this call
	write   bool // POST mutation; never cached
}

// fetch makes a read request to the Last.fm API and returns the inner XML
// of the response envelope.
//
// It handles:
// - Request construction (GET for reads, form POST for writes)
// - Signature calculation for signed requests
// - Response cache lookups and stores (GET only)
// - Response parsing (XML envelope, API errors)
// - Retry logic with exponential backoff
// - Rate limiting and context cancellation
func (c *Client) fetch(ctx context.Context, method string, params map[string]string, opts callOpts) ([]byte, error) {
	reqParams := make(map[string]string, len(params)+3)
	for k, v := range params {
		reqParams[k] = v
	}
	reqParams["method"] = method
	reqParams["api_key"] = c.apiKey

	if opts.session {
		if c.sessionKey == "" {
			return nil, ErrAuthRequired
		}
		reqParams["sk"] = c.sessionKey
	}

	cacheable := !opts.write && !opts.noCache
	cacheKey := responseCacheKey(reqParams)
	if cacheable {
		if body, ok := c.cache.Get(cacheKey); ok {
			c.logDebug(method, "cache hit")
			return body, nil
		}
	}

	values := url.Values{}
	for k, v := range reqParams {
		values.Set(k, v)
	}
	if opts.signed || opts.session || opts.write {
		values.Set("api_sig", calculateSignature(reqParams, c.apiSecret))
	}

	body, err := c.do(ctx, method, values, opts.write)
	if err != nil {
		return nil, err
	}
	if cacheable {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}

// submit makes a signed, session-bound mutation request. The response body
// is discarded; callers invalidate their affected cached properties on
// success.
func (c *Client) submit(ctx context.Context, method string, params map[string]string) error {
	_, err := c.fetch(ctx, method, params, callOpts{signed: true, session: true, write: true})
	return err
}

// do performs the HTTP exchange with retry and backoff.
func (c *Client) do(ctx context.Context, method string, values url.Values, write bool) ([]byte, error) {
	var lastErr error
	backoff := 1 * time.Second
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		c.logDebug(method, fmt.Sprintf("attempt %d/%d", i+1, maxRetries))

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, values, write)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if shouldRetryNetworkError(err) && i < maxRetries-1 {
				c.logDebug(method, fmt.Sprintf("network error, retrying: %v", err))
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: %d %s", resp.StatusCode, resp.Status)
			if i < maxRetries-1 {
				c.logDebug(method, fmt.Sprintf("server error, retrying: %v", lastErr))
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return nil, lastErr
		}

		// Last.fm reports API failures with non-200 codes as well; parse
		// the envelope before rejecting on status.
		var base Base
		if err := xml.Unmarshal(body, &base); err != nil {
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			}
			return nil, fmt.Errorf("failed to parse XML response: %w", err)
		}

		if base.Status == apiStatusFailed {
			var apiErr APIError
			if err := xml.Unmarshal(base.Inner, &apiErr); err != nil {
				return nil, fmt.Errorf("failed to parse error response: %w", err)
			}

			lastfmErr := &Error{
				Code:    apiErr.Code,
				Message: apiErr.Message,
			}

			if lastfmErr.Temporary() && i < maxRetries-1 {
				c.logDebug(method, fmt.Sprintf("temporary error, retrying: %v", lastfmErr))
				lastErr = lastfmErr
				if !sleep(ctx, backoff) {
					return nil, ctx.Err()
				}
				backoff = nextBackoff(backoff)
				continue
			}

			return nil, lastfmErr
		}

		c.logDebug(method, "succeeded")
		return base.Inner, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// newRequest builds a GET request for reads and a form POST for writes.
func (c *Client) newRequest(ctx context.Context, values url.Values, write bool) (*http.Request, error) {
	if write {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(values.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	}

	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+sep+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

const userAgent = "lastfm-go/1.0"

// responseCacheKey builds a deterministic cache key from the full request
// parameter set.
func responseCacheKey(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// unwrap decodes the inner XML of a response envelope into v. The inner
// fragment has no single root, so it is wrapped before unmarshaling.
func unwrap(data []byte, v any) error {
	wrapped := append(append([]byte("<root>"), data...), []byte("</root>")...)
	return xml.Unmarshal(wrapped, v)
}

// logDebug logs a transport-level debug message.
func (c *Client) logDebug(method, msg string) {
	c.logger.Debug().Str("method", method).Msg(msg)
}

// shouldRetryNetworkError checks if a network error is retryable.
func shouldRetryNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	if urlErr, ok := err.(*url.Error); ok {
		if _, ok := urlErr.Err.(net.Error); ok {
			return true
		}
	}

	return false
}

// sleep waits for the specified duration or until context is cancelled.
// Returns true if sleep completed, false if context was cancelled.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}

// nextBackoff calculates the next backoff duration with exponential increase.
// Maximum backoff is capped at 30 seconds.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > 30*time.Second {
		return 30 * time.Second
	}
	return next
}
