package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresPort is the port PostgreSQL listens on inside the container.
const PostgresPort = nat.Port("5432/tcp")

type (
	// DockerOptions represents options for running PostgreSQL in Docker
	DockerOptions struct {
		// Version is the postgres image tag (default: consts.DefaultPostgresVersion)
		Version string

		// InitDir is mounted at /docker-entrypoint-initdb.d when set. Relative
		// paths are resolved against the working directory.
		InitDir string

		Database string
		Username string
		Password string
	}

	// Container is a disposable PostgreSQL server for tests and the dev command.
	Container struct {
		options   DockerOptions
		container *tcpostgres.PostgresContainer
	}
)

// New creates a new Docker container with default options
//
// Example:
//
//	container := docker.New()
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer container.Stop(ctx)
func New() *Container {
	return NewWithOptions(DockerOptions{})
}

// NewWithOptions creates a new Docker container with custom options
//
// Example:
//
//	container := docker.NewWithOptions(docker.DockerOptions{
//		Version: "16",
//		InitDir: "db/init",
//	})
func NewWithOptions(opts DockerOptions) *Container {
	if opts.Version == "" {
		opts.Version = consts.DefaultPostgresVersion
	}
	if opts.Database == "" {
		opts.Database = consts.DefaultDevDatabase
	}
	if opts.Username == "" {
		opts.Username = consts.DefaultDevUser
	}
	if opts.Password == "" {
		opts.Password = consts.DefaultDevPassword
	}

	return &Container{options: opts}
}

// Start starts the PostgreSQL container and waits until it accepts connections.
func (c *Container) Start(ctx context.Context) error {
	if c.container != nil {
		return errors.New("container is already running")
	}

	customizers := []testcontainers.ContainerCustomizer{
		tcpostgres.WithDatabase(c.options.Database),
		tcpostgres.WithUsername(c.options.Username),
		tcpostgres.WithPassword(c.options.Password),
		// The server restarts once after running init scripts.
		testcontainers.WithWaitStrategyAndDeadline(
			2*time.Minute,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort(PostgresPort),
		),
	}

	if c.options.InitDir != "" {
		dir, err := filepath.Abs(c.options.InitDir)
		if err != nil {
			return errors.Wrapf(err, "failed to get absolute path for InitDir: %s", c.options.InitDir)
		}

		customizers = append(
			customizers,
			testcontainers.WithHostConfigModifier(func(hostConfig *container.HostConfig) {
				hostConfig.Mounts = []mount.Mount{
					{
						Type:     mount.TypeBind,
						Source:   dir,
						Target:   "/docker-entrypoint-initdb.d",
						ReadOnly: true,
					},
				}
			}),
		)
	}

	pg, err := tcpostgres.Run(ctx, Image(c.options.Version), customizers...)
	if err != nil {
		return errors.Wrap(err, "failed to start PostgreSQL container")
	}

	c.container = pg
	return nil
}

// Stop stops and removes the container. Stopping twice is a no-op.
func (c *Container) Stop(ctx context.Context) error {
	if c.container == nil {
		return nil
	}

	err := c.container.Terminate(ctx)
	c.container = nil
	return errors.Wrap(err, "failed to stop PostgreSQL container")
}

// GetDSN returns a postgres:// URL for the running container.
func (c *Container) GetDSN(ctx context.Context) (string, error) {
	if c.container == nil {
		return "", errors.New("container is not running")
	}

	dsn, err := c.container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return "", errors.Wrap(err, "failed to get connection string")
	}

	return dsn, nil
}

// IsRunning returns true if the container is currently running
func (c *Container) IsRunning() bool {
	return c.container != nil
}

// Image returns the alpine postgres image for version.
func Image(version string) string {
	return fmt.Sprintf("postgres:%s-alpine", version)
}
