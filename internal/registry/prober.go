package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const probeRequestTimeout = 5 * time.Second

// ProbeResult is one pass of the periodic health probe.
type ProbeResult struct {
	Healthy   bool              `json:"healthy"`
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// ProbeConfig tells the prober what to check.
type ProbeConfig struct {
	// SelfURL is the server's own health endpoint, probed over HTTP.
	SelfURL string
	// WorkspaceDir is checked for writability each pass.
	WorkspaceDir string
	Interval     time.Duration
}

// StartProber launches the periodic health probe in a goroutine. It stops
// when ctx is cancelled.
func (r *Registry) StartProber(ctx context.Context, cfg ProbeConfig) {
	ticker := time.NewTicker(cfg.Interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Health prober started", "interval", cfg.Interval)

		for {
			select {
			case <-ticker.C:
				result := r.probe(ctx, cfg)
				r.setLastProbe(result)
				if !result.Healthy {
					slog.Warn("Health probe failed", "checks", result.Checks)
				}
			case <-ctx.Done():
				slog.Info("Health prober shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (r *Registry) probe(ctx context.Context, cfg ProbeConfig) *ProbeResult {
	result := &ProbeResult{
		Healthy:   true,
		Checks:    make(map[string]string),
		CheckedAt: time.Now().UTC(),
	}

	record := func(name string, err error) {
		if err != nil {
			result.Healthy = false
			result.Checks[name] = err.Error()
			return
		}
		result.Checks[name] = "ok"
	}

	if r.enabled {
		pctx, cancel := context.WithTimeout(ctx, probeRequestTimeout)
		_, err := r.cli.Ping(pctx)
		cancel()
		record("docker", err)
	}
	record("http", probeHTTP(ctx, cfg.SelfURL))
	record("workspace", probeWorkspace(cfg.WorkspaceDir))

	return result
}

func probeHTTP(ctx context.Context, url string) error {
	pctx, cancel := context.WithTimeout(ctx, probeRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(pctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// probeWorkspace verifies the workspace directory accepts writes by
// creating and removing a marker file.
func probeWorkspace(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	marker := filepath.Join(dir, ".healthcheck")
	if err := os.WriteFile(marker, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("write workspace marker: %w", err)
	}
	if err := os.Remove(marker); err != nil {
		return fmt.Errorf("remove workspace marker: %w", err)
	}
	return nil
}
