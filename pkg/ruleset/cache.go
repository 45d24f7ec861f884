package ruleset

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/intent"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/observability/metrics"
	"github.com/asolytics/metascore/pkg/rulestore"
)

// Cache owns the merged rule-set snapshots. Entries are keyed by the scope
// tuple and expire after the configured TTL; a miss triggers exactly one
// rebuild per key via singleflight. Expired entries are retained so a store
// outage can be served from stale data instead of dropping to base-only.
type Cache struct {
	merger       *Merger
	store        rulestore.Client
	ttl          time.Duration
	degradedTTL  time.Duration
	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[string]*cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	rs        *MergedRuleSet
	expiresAt time.Time
}

// NewCache creates a rule-set cache over the given store. A nil store is
// allowed and behaves as a permanently unavailable one: every scope resolves
// to base-only configuration.
func NewCache(cfg *config.EngineConfig, store rulestore.Client) *Cache {
	ttl := cfg.Cache.TTLDuration()
	degraded := ttl / 10
	if degraded < 10*time.Second {
		degraded = 10 * time.Second
	}
	return &Cache{
		merger:       NewMerger(cfg),
		store:        store,
		ttl:          ttl,
		degradedTTL:  degraded,
		fetchTimeout: cfg.Cache.FetchTimeoutDuration(),
		entries:      make(map[string]*cacheEntry),
	}
}

// ActiveRuleSet returns the merged rule set for a scope, rebuilding on cache
// miss. It never fails: store problems degrade to stale-cache or base-only
// snapshots flagged through MergedRuleSet.Source.
func (c *Cache) ActiveRuleSet(ctx context.Context, scope Scope) *MergedRuleSet {
	key := scope.Key()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		event := "hit"
		if entry.rs.Degraded() {
			event = "stale_hit"
		}
		metrics.RuleSetCacheEvents.WithLabelValues(event).Inc()
		return entry.rs
	}

	metrics.RuleSetCacheEvents.WithLabelValues("miss").Inc()
	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		return c.rebuild(ctx, scope), nil
	})
	return v.(*MergedRuleSet)
}

// Invalidate drops the cached snapshot for a scope. Callers signal this when
// any contributing override document changes.
func (c *Cache) Invalidate(scope Scope) {
	c.mu.Lock()
	delete(c.entries, scope.Key())
	c.mu.Unlock()
	metrics.RuleSetCacheEvents.WithLabelValues("invalidate").Inc()
	logging.Infof("RuleSet cache invalidated for scope %s", scope.Key())
}

// rebuild fetches the override layers and merges a fresh snapshot. On store
// failure it serves the most recent cached snapshot if one exists, otherwise
// base-only configuration; degraded snapshots are cached briefly so a dead
// store is not hammered on every audit.
func (c *Cache) rebuild(ctx context.Context, scope Scope) *MergedRuleSet {
	docs, unavailable := c.fetchLayers(ctx, scope)

	if unavailable {
		metrics.RuleStoreErrors.WithLabelValues("rebuild").Inc()

		c.mu.RLock()
		entry, ok := c.entries[scope.Key()]
		c.mu.RUnlock()

		if ok {
			metrics.FallbackActivations.WithLabelValues("stale_cache").Inc()
			logging.Warnf("Rule store unavailable for scope %s, serving stale snapshot from %s",
				scope.Key(), entry.rs.BuiltAt.Format(time.RFC3339))
			stale := *entry.rs
			stale.Source = SourceStaleCache
			c.put(scope, &stale, c.degradedTTL)
			return &stale
		}

		metrics.FallbackActivations.WithLabelValues("base_only").Inc()
		logging.Warnf("Rule store unavailable for scope %s with no cached snapshot, using base-only configuration", scope.Key())
		rs := c.merger.Merge(scope, nil, SourceBaseOnly)
		c.put(scope, rs, c.degradedTTL)
		return rs
	}

	rs := c.merger.Merge(scope, docs, SourceFresh)
	if len(rs.IntentPatterns) == 0 {
		rs.IntentPatterns = c.fetchIntentPatterns(ctx, scope)
	}
	c.put(scope, rs, c.ttl)
	return rs
}

func (c *Cache) put(scope Scope, rs *MergedRuleSet, ttl time.Duration) {
	c.mu.Lock()
	c.entries[scope.Key()] = &cacheEntry{rs: rs, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// fetchLayers fetches the vertical, market and client override documents in
// precedence order. A missing document inherits its parent (nil layer); any
// transport failure marks the whole rebuild as store-unavailable.
func (c *Cache) fetchLayers(ctx context.Context, scope Scope) ([]*rulestore.OverrideDocument, bool) {
	if c.store == nil {
		return nil, true
	}

	var layers []string
	if scope.Vertical != "" {
		layers = append(layers, scope.VerticalScope())
	}
	if scope.Market != "" {
		layers = append(layers, scope.MarketScope())
	}
	if scope.Client != "" {
		layers = append(layers, scope.ClientScope())
	}

	docs := make([]*rulestore.OverrideDocument, 0, len(layers))
	for _, layer := range layers {
		fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
		doc, err := c.store.GetOverrides(fetchCtx, layer)
		cancel()

		switch {
		case err == nil:
			docs = append(docs, doc)
		case errors.Is(err, rulestore.ErrNotFound):
			// No override at this layer: inherit the parent scope.
			docs = append(docs, nil)
		default:
			logging.Warnf("Override fetch failed for %s: %v", layer, err)
			return nil, true
		}
	}
	return docs, false
}

// fetchIntentPatterns queries the store's dedicated pattern endpoint, most
// specific scope first. Pattern unavailability does not degrade the rule
// set; classification falls back to the fixed in-process set instead.
func (c *Cache) fetchIntentPatterns(ctx context.Context, scope Scope) []intent.Pattern {
	if c.store == nil {
		return nil
	}

	var layers []string
	if scope.Client != "" {
		layers = append(layers, scope.ClientScope())
	}
	if scope.Market != "" {
		layers = append(layers, scope.MarketScope())
	}
	if scope.Vertical != "" {
		layers = append(layers, scope.VerticalScope())
	}

	for _, layer := range layers {
		fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
		patterns, err := c.store.GetIntentPatterns(fetchCtx, layer)
		cancel()

		switch {
		case err == nil && len(patterns) > 0:
			return patterns
		case err == nil || errors.Is(err, rulestore.ErrNotFound):
			continue
		default:
			logging.Warnf("Intent pattern fetch failed for %s: %v", layer, err)
			return nil
		}
	}
	return nil
}
