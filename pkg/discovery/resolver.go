// Package discovery resolves which DNFileVault API server a run should talk
// to. It fetches the published endpoint list, falls back to a hardcoded pair
// when the list is unavailable, and probes candidates in priority order
// until one reports healthy.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/deltaneutral/dnfvault/internal/logger"
	"github.com/deltaneutral/dnfvault/pkg/errors"
	"github.com/deltaneutral/dnfvault/pkg/model"
)

const (
	// DefaultDiscoveryURL is the well-known location of the endpoint
	// configuration document.
	DefaultDiscoveryURL = "https://config.dnfilevault.com/endpoints.json"

	// DefaultProbeTimeout bounds discovery fetches and health probes.
	DefaultProbeTimeout = 10 * time.Second

	defaultUserAgent = "DNFileVaultClient/1.0-Go (+support@deltaneutral.com)"
)

// FallbackEndpoints is used when the discovery document cannot be fetched
// or parsed. Order is the implicit priority.
var FallbackEndpoints = []string{
	"https://api.dnfilevault.com",
	"https://api-redmint.dnfilevault.com",
}

// Resolver discovers and selects API endpoints.
type Resolver struct {
	client        *http.Client
	discoveryURL  string
	userAgent     string
	fallback      []string
	clientVersion string
}

// NewResolver creates a resolver with the given probe timeout and client
// version. The client version, when non-empty, is compared against the
// min_client field of the discovery document to warn about outdated
// installations.
func NewResolver(timeout time.Duration, clientVersion string) *Resolver {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Resolver{
		client:        &http.Client{Timeout: timeout},
		discoveryURL:  DefaultDiscoveryURL,
		userAgent:     defaultUserAgent,
		fallback:      FallbackEndpoints,
		clientVersion: clientVersion,
	}
}

// Resolve fetches the endpoint configuration and returns candidate URLs in
// priority order. Every failure path degrades to the fallback list; Resolve
// never returns an error.
func (r *Resolver) Resolve(ctx context.Context) []string {
	logger.Debug("Discovering API endpoints", logger.Fields{"url": r.discoveryURL})

	cfg, err := r.fetchConfig(ctx)
	if err != nil {
		logger.Info("Endpoint discovery unavailable, using fallback list", logger.Fields{
			"error":     err.Error(),
			"fallbacks": len(r.fallback),
		})
		return r.fallback
	}

	urls := cfg.SortedURLs()
	if len(urls) == 0 {
		logger.Info("Discovery document lists no endpoints, using fallback list")
		return r.fallback
	}

	logger.Infof("Found %d endpoints (config v%d, updated %s)", len(urls), cfg.Version, cfg.Updated)
	r.checkMinClient(cfg.MinClient)
	return urls
}

func (r *Resolver) fetchConfig(ctx context.Context) (*model.EndpointConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.discoveryURL, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "discovery request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var cfg model.EndpointConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "malformed discovery document")
	}
	return &cfg, nil
}

// checkMinClient warns when the server publishes a minimum client version
// newer than this build. The run continues either way.
func (r *Resolver) checkMinClient(minClient string) {
	if minClient == "" || r.clientVersion == "" {
		return
	}
	minimum, err := goversion.NewVersion(minClient)
	if err != nil {
		logger.Debugf("Ignoring unparseable min_client %q", minClient)
		return
	}
	current, err := goversion.NewVersion(r.clientVersion)
	if err != nil {
		return
	}
	if current.LessThan(minimum) {
		logger.Warn("Client is older than the minimum recommended version", logger.Fields{
			"current": current.String(),
			"minimum": minimum.String(),
		})
	}
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

// SelectHealthy probes each candidate's /health endpoint in order and
// returns the first that reports status "healthy". Probing stops at the
// first success. ErrNoHealthyEndpoint is returned when every candidate
// fails.
func (r *Resolver) SelectHealthy(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoCandidates
	}

	logger.Info("Finding a healthy API server")
	for _, baseURL := range urls {
		if err := r.probe(ctx, baseURL); err != nil {
			logger.Info("Endpoint unavailable", logger.Fields{"url": baseURL, "error": err.Error()})
			continue
		}
		logger.Info("Endpoint healthy", logger.Fields{"url": baseURL})
		return baseURL, nil
	}

	return "", ErrNoHealthyEndpoint
}

func (r *Resolver) probe(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "health probe failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe returned %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return errors.Wrap(err, "malformed health response")
	}
	if health.Status != "healthy" {
		return fmt.Errorf("endpoint reported status %q", health.Status)
	}
	return nil
}
