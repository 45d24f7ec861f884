package rulestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/observability/metrics"
)

const (
	overridesKeyPrefix = "aso:overrides:"
	intentsKeyPrefix   = "aso:intents:"
)

// RedisClient reads override documents from Redis, where the control plane
// publishes them as JSON values keyed by scope.
type RedisClient struct {
	rdb redis.UniversalClient
}

// NewRedisClient wraps an existing Redis connection. The caller owns the
// connection lifecycle.
func NewRedisClient(rdb redis.UniversalClient) *RedisClient {
	return &RedisClient{rdb: rdb}
}

// GetOverrides fetches the override document for a scope.
func (c *RedisClient) GetOverrides(ctx context.Context, scope string) (*OverrideDocument, error) {
	raw, err := c.rdb.Get(ctx, overridesKeyPrefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RuleStoreErrors.WithLabelValues("overrides").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc OverrideDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("rulestore: malformed override document for scope %q: %w", scope, err)
	}
	if doc.Scope == "" {
		doc.Scope = scope
	}
	return &doc, nil
}

// GetIntentPatterns fetches the intent pattern set for a scope.
func (c *RedisClient) GetIntentPatterns(ctx context.Context, scope string) ([]intent.Pattern, error) {
	raw, err := c.rdb.Get(ctx, intentsKeyPrefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RuleStoreErrors.WithLabelValues("intent_patterns").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var patterns []intent.Pattern
	if err := json.Unmarshal(raw, &patterns); err != nil {
		return nil, fmt.Errorf("rulestore: malformed intent patterns for scope %q: %w", scope, err)
	}
	return patterns, nil
}
