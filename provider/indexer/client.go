package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/ark-network/ark-sdk-go/internal/buildlog"
	"github.com/ark-network/ark-sdk-go/provider"
)

var log = buildlog.NewSubLogger("IDXR")

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

func (c *httpClient) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("indexer: rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return nil, fmt.Errorf("indexer: build request: %w", err)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("indexer: request failed: %w", err)
			if attempt < c.cfg.RetryAttempts {
				log.Debugf("indexer: %s %s failed (attempt %d/%d): %v", method, path, attempt+1, c.cfg.RetryAttempts+1, err)
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
			log.Errorf("indexer: %s %s failed, giving up: %v", method, path, err)
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("indexer: read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("indexer: server returned %d: %s", resp.StatusCode, string(body))
			if attempt < c.cfg.RetryAttempts {
				time.Sleep(c.cfg.RetryDelay * time.Duration(attempt+1))
				continue
			}
			return nil, lastErr
		}

		return nil, fmt.Errorf("indexer: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("indexer: request failed after %d attempts: %w", c.cfg.RetryAttempts+1, lastErr)
}

func (c *httpClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("indexer: decode %s: %w", path, err)
	}
	return nil
}

func (c *httpClient) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("indexer: encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("indexer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("indexer: rate limiter: %w", err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("indexer: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("indexer: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("indexer: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("indexer: decode response: %w", err)
	}
	return nil
}

func pageQuery(page provider.PageRequest) url.Values {
	v := url.Values{}
	if page.Size > 0 {
		v.Set("page.size", strconv.Itoa(page.Size))
	}
	if page.Index > 0 {
		v.Set("page.index", strconv.Itoa(page.Index))
	}
	return v
}
