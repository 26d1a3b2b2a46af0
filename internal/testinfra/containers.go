// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMongoImage is the MongoDB image used by store tests
	DefaultMongoImage = "mongo:7"

	// DefaultRedisImage is the Redis image used by cache tests
	DefaultRedisImage = "redis:7-alpine"
)

// SkipIfNoDocker skips the test if Docker is not available.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if !IsDockerAvailable() {
		t.Skip("Skipping test: Docker not available")
	}
}

// IsDockerAvailable checks if Docker daemon is running and accessible.
func IsDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", "info")
	return cmd.Run() == nil
}

// CleanupContainer is a helper for deferred container cleanup that logs errors.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container != nil {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	}
}

// ServiceContainer is a running single-port service with its connection URI.
type ServiceContainer struct {
	testcontainers.Container
	URI string
}

// Option configures a service container.
type Option func(*containerConfig)

type containerConfig struct {
	image        string
	startTimeout time.Duration
}

// WithImage overrides the container image.
func WithImage(image string) Option {
	return func(c *containerConfig) {
		c.image = image
	}
}

// WithStartTimeout sets how long to wait for the service to accept connections.
func WithStartTimeout(timeout time.Duration) Option {
	return func(c *containerConfig) {
		c.startTimeout = timeout
	}
}

// NewMongoContainer starts a standalone MongoDB server.
func NewMongoContainer(ctx context.Context, opts ...Option) (*ServiceContainer, error) {
	return startService(ctx, "mongodb", DefaultMongoImage, "27017", opts,
		wait.ForLog("Waiting for connections"))
}

// NewRedisContainer starts a Redis server.
func NewRedisContainer(ctx context.Context, opts ...Option) (*ServiceContainer, error) {
	return startService(ctx, "redis", DefaultRedisImage, "6379", opts,
		wait.ForLog("Ready to accept connections"))
}

func startService(ctx context.Context, scheme, image, port string, opts []Option, ready wait.Strategy) (*ServiceContainer, error) {
	cfg := &containerConfig{
		image:        image,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	exposed := port + "/tcp"
	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{exposed},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(exposed),
			ready,
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", scheme, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get %s host: %w", scheme, err)
	}
	mapped, err := container.MappedPort(ctx, exposed)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get %s port: %w", scheme, err)
	}

	return &ServiceContainer{
		Container: container,
		URI:       fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()),
	}, nil
}
