package questdb

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestContainer is a disposable QuestDB instance for integration tests.
type TestContainer struct {
	Container testcontainers.Container
	Client    *Pool
	Config    Config
}

// TestContainerConfig holds configuration for the test container.
type TestContainerConfig struct {
	Image          string
	StartupTimeout time.Duration
}

// DefaultTestContainerConfig returns a default configuration.
func DefaultTestContainerConfig() *TestContainerConfig {
	return &TestContainerConfig{
		Image:          "questdb/questdb:8.2.3",
		StartupTimeout: 2 * time.Minute,
	}
}

// NewTestContainer starts QuestDB and connects a pool to its PostgreSQL port.
func NewTestContainer(ctx context.Context, config *TestContainerConfig) (*TestContainer, error) {
	if config == nil {
		config = DefaultTestContainerConfig()
	}

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        config.Image,
			ExposedPorts: []string{"8812/tcp", "9000/tcp"},
			WaitingFor: wait.ForListeningPort("8812/tcp").
				WithStartupTimeout(config.StartupTimeout),
		},
		Started: true,
	}

	container, err := testcontainers.GenericContainer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start questdb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "8812/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get mapped port: %w", err)
	}

	cfg := Config{
		Host:           host,
		Port:           port.Int(),
		Database:       "qdb",
		Username:       "admin",
		Password:       "quest",
		MaxConns:       4,
		MinConns:       1,
		ConnectTimeout: 10 * time.Second,
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to questdb: %w", err)
	}

	return &TestContainer{Container: container, Client: client, Config: cfg}, nil
}

// Close closes the pool and terminates the container.
func (tc *TestContainer) Close(ctx context.Context) error {
	if tc.Client != nil {
		tc.Client.Close()
	}
	if tc.Container != nil {
		if err := tc.Container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}
