// Package registry handles Docker daemon registration and self health
// probing for containerized deployments.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/client"
)

// Registration is the recorded outcome of registering with the Docker
// daemon.
type Registration struct {
	ContainerID  string    `json:"containerId,omitempty"`
	Image        string    `json:"image,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Registry connects the running server to the local Docker daemon. When
// registration is disabled every method is a no-op, so callers never need
// to branch on deployment mode.
type Registry struct {
	cli     *client.Client
	enabled bool

	mu           sync.RWMutex
	registration *Registration
	lastProbe    *ProbeResult
}

// New creates a registry. With enabled false no Docker client is created.
func New(enabled bool) (*Registry, error) {
	if !enabled {
		return &Registry{}, nil
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	slog.Info("Docker client initialized for registration")
	return &Registry{cli: cli, enabled: true}, nil
}

// Enabled reports whether Docker registration is active.
func (r *Registry) Enabled() bool {
	return r.enabled
}

// Register pings the daemon and looks up the server's own container. The
// container id is the hostname inside Docker; running outside a container
// is logged but not an error.
func (r *Registry) Register(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	if _, err := r.cli.Ping(ctx); err != nil {
		return fmt.Errorf("ping docker daemon: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("resolve hostname: %w", err)
	}

	inspect, err := r.cli.ContainerInspect(ctx, hostname)
	if err != nil {
		if errdefs.IsNotFound(err) {
			slog.Warn("Not running in a managed container, registration recorded without container id")
			r.setRegistration(&Registration{RegisteredAt: time.Now().UTC()})
			return nil
		}
		return fmt.Errorf("inspect own container: %w", err)
	}

	reg := &Registration{
		ContainerID:  inspect.ID,
		Image:        inspect.Config.Image,
		RegisteredAt: time.Now().UTC(),
	}
	r.setRegistration(reg)
	slog.Info("Registered with docker daemon",
		"container_id", reg.ContainerID,
		"image", reg.Image)
	return nil
}

func (r *Registry) setRegistration(reg *Registration) {
	r.mu.Lock()
	r.registration = reg
	r.mu.Unlock()
}

// Registration returns the recorded registration, or nil when none exists.
func (r *Registry) Registration() *Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registration
}

// LastProbe returns the most recent health probe result, or nil before the
// first probe completes.
func (r *Registry) LastProbe() *ProbeResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastProbe
}

func (r *Registry) setLastProbe(p *ProbeResult) {
	r.mu.Lock()
	r.lastProbe = p
	r.mu.Unlock()
}

// Close releases the Docker client.
func (r *Registry) Close() error {
	if r.cli == nil {
		return nil
	}
	return r.cli.Close()
}
