package rulestore

import (
	"context"
	"sync"

	"github.com/asolytics/metascore/pkg/intent"
)

// StaticClient serves documents from memory. It backs embedded deployments
// that ship their overrides with the binary, and the engine's tests. The
// Unavailable flag simulates a store outage.
type StaticClient struct {
	mu          sync.RWMutex
	overrides   map[string]*OverrideDocument
	patterns    map[string][]intent.Pattern
	unavailable bool
}

// NewStaticClient creates an empty static client.
func NewStaticClient() *StaticClient {
	return &StaticClient{
		overrides: make(map[string]*OverrideDocument),
		patterns:  make(map[string][]intent.Pattern),
	}
}

// SetOverrides installs the override document for a scope.
func (c *StaticClient) SetOverrides(scope string, doc *OverrideDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[scope] = doc
}

// SetIntentPatterns installs the intent pattern set for a scope.
func (c *StaticClient) SetIntentPatterns(scope string, patterns []intent.Pattern) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns[scope] = patterns
}

// SetUnavailable toggles simulated outage: every call fails with
// ErrUnavailable while set.
func (c *StaticClient) SetUnavailable(down bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = down
}

// GetOverrides returns the stored document for a scope.
func (c *StaticClient) GetOverrides(_ context.Context, scope string) (*OverrideDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.unavailable {
		return nil, ErrUnavailable
	}
	doc, ok := c.overrides[scope]
	if !ok {
		return nil, ErrNotFound
	}
	return doc, nil
}

// GetIntentPatterns returns the stored pattern set for a scope.
func (c *StaticClient) GetIntentPatterns(_ context.Context, scope string) ([]intent.Pattern, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.unavailable {
		return nil, ErrUnavailable
	}
	patterns, ok := c.patterns[scope]
	if !ok {
		return nil, ErrNotFound
	}
	return patterns, nil
}
