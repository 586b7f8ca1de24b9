package testutil

import (
	"context"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/docker"
	"github.com/stretchr/testify/require"
)

// ErrContainerNotFound is returned by MockDockerClient.ContainerInspect by default
var ErrContainerNotFound = errdefs.NotFound(errors.New("container not found"))

// SkipIfNoDocker skips the test if Docker is not available or -short is set
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	cmd := exec.CommandContext(t.Context(), "docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// StartPostgres starts a disposable PostgreSQL container and returns its
// connection string. The container is removed when the test ends.
func StartPostgres(t *testing.T) string {
	t.Helper()

	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := docker.New()
	require.NoError(t, c.Start(ctx), "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = c.Stop(context.Background()) })

	dsn, err := c.GetDSN(ctx)
	require.NoError(t, err, "Failed to get container DSN")

	return dsn
}

// MockDockerClient implements docker.DockerClient with overridable funcs
type MockDockerClient struct {
	ImagePullFunc        func(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreateFunc  func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error)
	ContainerStartFunc   func(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerListFunc    func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerStopFunc    func(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemoveFunc  func(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspectFunc func(ctx context.Context, containerID string) (container.InspectResponse, error)

	Calls []string
}

var _ docker.DockerClient = (*MockDockerClient)(nil)

// NewMockDockerClient creates a new mock Docker client with default implementations
func NewMockDockerClient() *MockDockerClient {
	return &MockDockerClient{}
}

// ImagePull implements docker.DockerClient interface
func (m *MockDockerClient) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	m.Calls = append(m.Calls, "ImagePull "+refStr)
	if m.ImagePullFunc != nil {
		return m.ImagePullFunc(ctx, refStr, options)
	}
	return io.NopCloser(strings.NewReader("pulling image")), nil
}

// ContainerCreate implements docker.DockerClient interface
func (m *MockDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *v1.Platform, containerName string) (container.CreateResponse, error) {
	m.Calls = append(m.Calls, "ContainerCreate "+containerName)
	if m.ContainerCreateFunc != nil {
		return m.ContainerCreateFunc(ctx, config, hostConfig, networkingConfig, platform, containerName)
	}
	return container.CreateResponse{ID: "mock-container-id"}, nil
}

// ContainerStart implements docker.DockerClient interface
func (m *MockDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	m.Calls = append(m.Calls, "ContainerStart "+containerID)
	if m.ContainerStartFunc != nil {
		return m.ContainerStartFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerList implements docker.DockerClient interface
func (m *MockDockerClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	m.Calls = append(m.Calls, "ContainerList")
	if m.ContainerListFunc != nil {
		return m.ContainerListFunc(ctx, options)
	}
	return []container.Summary{}, nil
}

// ContainerStop implements docker.DockerClient interface
func (m *MockDockerClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	m.Calls = append(m.Calls, "ContainerStop "+containerID)
	if m.ContainerStopFunc != nil {
		return m.ContainerStopFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerRemove implements docker.DockerClient interface
func (m *MockDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	m.Calls = append(m.Calls, "ContainerRemove "+containerID)
	if m.ContainerRemoveFunc != nil {
		return m.ContainerRemoveFunc(ctx, containerID, options)
	}
	return nil
}

// ContainerInspect implements docker.DockerClient interface
func (m *MockDockerClient) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	m.Calls = append(m.Calls, "ContainerInspect "+containerID)
	if m.ContainerInspectFunc != nil {
		return m.ContainerInspectFunc(ctx, containerID)
	}
	return container.InspectResponse{}, ErrContainerNotFound
}
