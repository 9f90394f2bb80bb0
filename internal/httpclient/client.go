// Package httpclient provides the single pooled HTTP client shared by the
// registry-existence and OSV vulnerability lookups of the dependency
// guard (spec §4.5, §5 "external connections ... owned by long-lived
// singletons"). Grounded on the connection-pooling/retry/backoff shape of
// the teacher's internal/emergent.ClientFactory, generalized from a
// domain-specific SDK wrapper to a plain JSON HTTP client.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is a shared, connection-pooled HTTP client with bounded retries
// and a process-wide rate limit — every OSV/PyPI/npm call site shares one
// limiter so a manifest with hundreds of dependencies can't hammer a
// third-party registry just because fan-out got more parallel.
type Client struct {
	http       *http.Client
	maxRetries int
	limiter    *rate.Limiter
}

// New builds a Client. The transport pools connections the same way across
// every call site (OSV, PyPI, npm) rather than a fresh client per request.
// requestsPerSecond <= 0 disables rate limiting.
func New(timeout time.Duration, maxRetries int, requestsPerSecond float64) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		http:       &http.Client{Timeout: timeout, Transport: transport},
		maxRetries: maxRetries,
		limiter:    limiter,
	}
}

// wait blocks until the limiter admits one more request, or ctx is done.
// A nil limiter (rate limiting disabled) is a no-op.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// GetJSON issues a GET and decodes the JSON response body into out.
// Returns (false, nil) on a confirmed 404 so callers can distinguish
// "not found" from a transient external-service error.
func (c *Client) GetJSON(ctx context.Context, url string, out any) (found bool, err error) {
	err = c.withRetry(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			return reqErr
		}
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			found = false
			return nil
		}
		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("http %d from %s: %s", resp.StatusCode, url, string(body))
		}
		found = true
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
	return found, err
}

// PostJSON issues a POST with a JSON-encoded body and decodes the JSON
// response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	return c.withRetry(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")
		resp, doErr := c.http.Do(req)
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return fmt.Errorf("http %d from %s: %s", resp.StatusCode, url, string(respBody))
		}
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
		if err := c.wait(ctx); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return err
		}
	}
	return lastErr
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return false
}
