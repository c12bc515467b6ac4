package esplora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ark-network/ark-sdk-go/internal/buildlog"
)

var log = buildlog.NewSubLogger("ESPL")

// httpClient is a rate-limited, retrying HTTP client over an Esplora-style
// REST API.
type httpClient struct {
	cfg *Config

	hc      *http.Client
	limiter *rate.Limiter
}

func newHTTPClient(cfg *Config) *httpClient {
	return &httpClient{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit),
	}
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("esplora: rate limiter: %w", err)
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("esplora: build request: %w", err)
		}
		if body != nil && contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("esplora: request failed: %w", err)
			if attempt < c.cfg.RetryAttempts {
				log.Debugf("esplora: %s %s failed (attempt %d/%d): %v", method, path, attempt+1, c.cfg.RetryAttempts+1, err)
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
			log.Errorf("esplora: %s %s failed, giving up: %v", method, path, err)
			return nil, lastErr
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("esplora: read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBody, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("esplora: rate limited by server (429)")
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1) * 2)
				continue
			}
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, strings.TrimSpace(string(respBody)))
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("esplora: server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
		default:
			return nil, fmt.Errorf("esplora: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
	}

	return nil, fmt.Errorf("esplora: request failed after %d attempts: %w", c.cfg.RetryAttempts+1, lastErr)
}

func (c *httpClient) getJSON(ctx context.Context, path string, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("esplora: decode %s: %w", path, err)
	}
	return nil
}
