package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/asolytics/metascore/pkg/observability/logging"
)

var (
	cfg     *EngineConfig
	cfgOnce sync.Once
	cfgErr  error
	cfgMu   sync.RWMutex
)

// Load loads the configuration from the YAML file once and caches it
// globally. Subsequent calls return the cached config.
func Load(path string) (*EngineConfig, error) {
	cfgOnce.Do(func() {
		parsed, err := Parse(path)
		if err != nil {
			cfgErr = err
			return
		}
		cfgMu.Lock()
		cfg = parsed
		cfgMu.Unlock()
	})
	if cfgErr != nil {
		return nil, cfgErr
	}
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg, nil
}

// Parse parses and validates a YAML config file without touching the global
// cache. Sections left unset fall back to the shipped defaults.
func Parse(path string) (*EngineConfig, error) {
	// Resolve symlinks to handle mounted config files.
	resolved, _ := filepath.EvalSymlinks(path)
	if resolved == "" {
		resolved = path
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	parsed := &EngineConfig{}
	if err := yaml.Unmarshal(data, parsed); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	parsed.applyDefaults()
	if err := parsed.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logging.Infof("Config loaded: %d formulas, %d kpi families, %d base thresholds",
		len(parsed.Formulas), len(parsed.Families), len(parsed.Base.Thresholds))
	return parsed, nil
}

// Replace swaps the globally cached config. Safe for concurrent readers.
func Replace(newCfg *EngineConfig) {
	cfgMu.Lock()
	cfg = newCfg
	cfgErr = nil
	cfgMu.Unlock()
}

// Get returns the current globally cached config, or nil before Load.
func Get() *EngineConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}
