package rulestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/observability/metrics"
)

// HTTPClientOptions configures the HTTP rule store client.
type HTTPClientOptions struct {
	// BaseURL is the store endpoint, e.g. "http://rules.internal:8080".
	BaseURL string

	// Timeout bounds each request. Default: 300ms. The engine must never
	// block an audit on a slow store.
	Timeout time.Duration

	// Retries is the number of retries after the first attempt. Default: 2.
	Retries int
}

// HTTPClient fetches override documents over the rule store's JSON API.
type HTTPClient struct {
	baseURL string
	retries int
	client  *http.Client
}

// NewHTTPClient creates an HTTP rule store client.
func NewHTTPClient(opts HTTPClientOptions) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("rulestore: BaseURL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("rulestore: invalid BaseURL: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Millisecond
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}

	return &HTTPClient{
		baseURL: opts.BaseURL,
		retries: retries,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// GetOverrides fetches the override document for a scope.
func (c *HTTPClient) GetOverrides(ctx context.Context, scope string) (*OverrideDocument, error) {
	body, err := c.get(ctx, "overrides", scope)
	if err != nil {
		return nil, err
	}

	var doc OverrideDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		metrics.RuleStoreErrors.WithLabelValues("overrides").Inc()
		return nil, fmt.Errorf("rulestore: malformed override document for scope %q: %w", scope, err)
	}
	if doc.Scope == "" {
		doc.Scope = scope
	}
	return &doc, nil
}

// GetIntentPatterns fetches the intent pattern set for a scope.
func (c *HTTPClient) GetIntentPatterns(ctx context.Context, scope string) ([]intent.Pattern, error) {
	body, err := c.get(ctx, "intent-patterns", scope)
	if err != nil {
		return nil, err
	}

	var patterns []intent.Pattern
	if err := json.Unmarshal(body, &patterns); err != nil {
		metrics.RuleStoreErrors.WithLabelValues("intent_patterns").Inc()
		return nil, fmt.Errorf("rulestore: malformed intent patterns for scope %q: %w", scope, err)
	}
	return patterns, nil
}

// get performs a GET with bounded retries. 404 maps to ErrNotFound without
// retrying; transport errors and 5xx responses retry up to the configured
// count, then surface as ErrUnavailable.
func (c *HTTPClient) get(ctx context.Context, resource, scope string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1/%s/%s", c.baseURL, resource, url.PathEscape(scope))

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("rulestore: building request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			logging.Warnf("Rule store request failed (attempt %d/%d): %v", attempt+1, c.retries+1, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			logging.Warnf("Rule store returned %d for %s/%s (attempt %d/%d)", resp.StatusCode, resource, scope, attempt+1, c.retries+1)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("rulestore: unexpected status %d for %s/%s", resp.StatusCode, resource, scope)
		case readErr != nil:
			lastErr = readErr
			continue
		}
		return body, nil
	}

	metrics.RuleStoreErrors.WithLabelValues(resource).Inc()
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}
