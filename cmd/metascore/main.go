// metascore audits app-listing metadata from the command line and optionally
// serves Prometheus metrics while doing so.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/asolytics/metascore/pkg/audit"
	"github.com/asolytics/metascore/pkg/config"
	"github.com/asolytics/metascore/pkg/observability/logging"
	"github.com/asolytics/metascore/pkg/rulestore"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to the engine config YAML (defaults ship built in)")
		listingPath  = flag.String("listing", "-", "Path to the listing JSON, or - for stdin")
		ruleStoreURL = flag.String("rule-store-url", "", "Base URL of the HTTP rule store")
		redisAddr    = flag.String("redis-addr", "", "Redis address of the rule store (alternative to -rule-store-url)")
		metricsPort  = flag.Int("metrics-port", 0, "Serve Prometheus metrics on this port (0 disables)")
	)
	flag.Parse()

	if _, err := logging.InitFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logging.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		cfg = loaded
	}

	store, err := buildStore(*ruleStoreURL, *redisAddr, cfg)
	if err != nil {
		logging.Fatalf("failed to build rule store client: %v", err)
	}

	if *metricsPort > 0 {
		go serveMetrics(*metricsPort)
	}

	listing, err := readListing(*listingPath)
	if err != nil {
		logging.Fatalf("failed to read listing: %v", err)
	}

	engine, err := audit.NewEngine(cfg, store)
	if err != nil {
		logging.Fatalf("failed to build audit engine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := engine.Audit(ctx, listing)
	if err != nil {
		logging.Fatalf("audit failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logging.Fatalf("failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}

// buildStore selects the rule store transport. Without one the engine runs
// on base-only configuration, which is a supported degraded mode.
func buildStore(storeURL, redisAddr string, cfg *config.EngineConfig) (rulestore.Client, error) {
	switch {
	case storeURL != "":
		return rulestore.NewHTTPClient(rulestore.HTTPClientOptions{
			BaseURL: storeURL,
			Timeout: cfg.Cache.FetchTimeoutDuration(),
			Retries: cfg.Cache.Retries,
		})
	case redisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		return rulestore.NewRedisClient(rdb), nil
	default:
		logging.Warnf("no rule store configured, audits run on base-only rules")
		return nil, nil
	}
}

func readListing(path string) (audit.Listing, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return audit.Listing{}, err
		}
		defer f.Close()
		r = f
	}

	var listing audit.Listing
	if err := json.NewDecoder(r).Decode(&listing); err != nil {
		return audit.Listing{}, fmt.Errorf("decoding listing JSON: %w", err)
	}
	return listing, nil
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logging.Infof("serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Errorf("metrics server stopped: %v", err)
	}
}
