// Package dockerd wraps the Docker client for the nested-execution
// preflight. A nested testbed drives sibling containers through the
// daemon socket mounted into this container, so an unreachable daemon is
// worth surfacing before the payload trips over it.
package dockerd

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"
)

type Client struct {
	docker *client.Client
}

func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return &Client{docker: cli}, nil
}

func (c *Client) Close() error {
	return c.docker.Close()
}

// Ping verifies the Docker daemon is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.docker.Ping(ctx)
	return err
}

// ServerVersion returns the daemon version string for diagnostics.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	v, err := c.docker.ServerVersion(ctx)
	if err != nil {
		return "", err
	}
	return v.Version, nil
}
