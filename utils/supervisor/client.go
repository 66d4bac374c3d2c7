// Package supervisor wraps the Docker SDK client to expose the restart
// contract the watchdog depends on.
package supervisor

import (
	"context"
	"log"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// Client restarts supervised service containers through the Docker daemon.
type Client struct {
	cli *client.Client

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewClient creates a new supervisor client using environment variables.
// It connects to the Docker daemon via the socket specified in DOCKER_HOST
// or defaults to unix:///var/run/docker.sock
func NewClient() (*Client, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		log.Printf("Failed to create Docker client: %v", err)
		return nil, err
	}

	return &Client{cli: cli, inFlight: make(map[string]bool)}, nil
}

// Ping verifies connection to the Docker daemon.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.cli.Ping(ctx)
	if err != nil {
		log.Printf("Docker daemon ping failed: %v", err)
		return err
	}
	return nil
}

// Restart restarts the named service container. A restart requested while
// the same service is already restarting is a no-op, so repeated remediation
// attempts cannot stack.
func (c *Client) Restart(ctx context.Context, service string) error {
	c.mu.Lock()
	if c.inFlight[service] {
		c.mu.Unlock()
		log.Printf("Restart of %s already in flight, skipping", service)
		return nil
	}
	c.inFlight[service] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, service)
		c.mu.Unlock()
	}()

	log.Printf("Restarting service container: %s", service)
	return c.cli.ContainerRestart(ctx, service, container.StopOptions{})
}

// Close releases the underlying Docker client.
func (c *Client) Close() error {
	return c.cli.Close()
}
