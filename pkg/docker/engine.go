package docker

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
	"github.com/pseudomuto/pgmigrate/pkg/consts"
)

type (
	// DockerClient defines the interface for Docker operations used by the Engine.
	// This interface is satisfied by *client.Client and allows for easy mocking in tests.
	DockerClient interface {
		ImagePull(context.Context, string, image.PullOptions) (io.ReadCloser, error)
		ContainerCreate(context.Context, *container.Config, *container.HostConfig, *network.NetworkingConfig, *v1.Platform, string) (container.CreateResponse, error)
		ContainerStart(context.Context, string, container.StartOptions) error
		ContainerList(context.Context, container.ListOptions) ([]container.Summary, error)
		ContainerStop(context.Context, string, container.StopOptions) error
		ContainerRemove(context.Context, string, container.RemoveOptions) error
		ContainerInspect(context.Context, string) (container.InspectResponse, error)
	}

	// Engine manages the long lived development server. Unlike Container it
	// outlives the process that started it, so it talks to the Docker API
	// directly and finds the server again by name.
	Engine struct {
		client DockerClient
		out    io.Writer
	}

	// DevServer describes a development server known to Docker.
	DevServer struct {
		ID       string
		Name     string
		Image    string
		State    string
		HostPort int
	}

	// DevOptions configure the development server.
	DevOptions struct {
		Name     string
		Version  string
		HostPort int // 0 lets Docker pick a free port
		Database string
		Username string
		Password string
	}
)

// NewEngine creates a new Docker Engine instance. Image pull progress is
// written to out.
//
// Example:
//
//	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer cli.Close()
//
//	engine := docker.NewEngine(cli, io.Discard)
//	srv, err := engine.Up(ctx, docker.DevOptions{})
func NewEngine(cl DockerClient, out io.Writer) *Engine {
	if out == nil {
		out = io.Discard
	}

	return &Engine{client: cl, out: out}
}

// WithDefaults fills unset fields from consts.
func (o DevOptions) WithDefaults() DevOptions {
	if o.Name == "" {
		o.Name = consts.DevContainerName
	}
	if o.Version == "" {
		o.Version = consts.DefaultPostgresVersion
	}
	if o.Database == "" {
		o.Database = consts.DefaultDevDatabase
	}
	if o.Username == "" {
		o.Username = consts.DefaultDevUser
	}
	if o.Password == "" {
		o.Password = consts.DefaultDevPassword
	}

	return o
}

// DSN returns the URL of the server published on localhost:port.
func (o DevOptions) DSN(port int) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(o.Username, o.Password),
		Host:     fmt.Sprintf("localhost:%d", port),
		Path:     "/" + o.Database,
		RawQuery: "sslmode=disable",
	}

	return u.String()
}

// Up pulls the image, then creates and starts the development server. The
// returned DevServer carries the published host port.
func (e *Engine) Up(ctx context.Context, opts DevOptions) (*DevServer, error) {
	opts = opts.WithDefaults()
	img := Image(opts.Version)

	out, err := e.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pull image: %s", img)
	}
	_, _ = io.Copy(e.out, out)
	_ = out.Close()

	hostPort := ""
	if opts.HostPort > 0 {
		hostPort = strconv.Itoa(opts.HostPort)
	}

	resp, err := e.client.ContainerCreate(
		ctx,
		&container.Config{
			Image: img,
			Env: []string{
				"POSTGRES_DB=" + opts.Database,
				"POSTGRES_USER=" + opts.Username,
				"POSTGRES_PASSWORD=" + opts.Password,
			},
			ExposedPorts: nat.PortSet{PostgresPort: struct{}{}},
			Labels:       map[string]string{consts.DevContainerLabel: "true"},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				PostgresPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: hostPort}},
			},
		},
		nil,
		nil,
		opts.Name,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create container: %s", opts.Name)
	}

	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, errors.Wrapf(err, "failed to start container: %s", opts.Name)
	}

	return e.Get(ctx, resp.ID)
}

// List returns the running development servers.
func (e *Engine) List(ctx context.Context) ([]*DevServer, error) {
	list, err := e.client.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(
			filters.Arg("status", "running"),
			filters.Arg("label", consts.DevContainerLabel+"=true"),
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list running containers")
	}

	res := make([]*DevServer, len(list))
	for i, c := range list {
		srv := &DevServer{ID: c.ID, Image: c.Image, State: c.State}
		if len(c.Names) > 0 {
			srv.Name = strings.TrimPrefix(c.Names[0], "/")
		}

		for _, p := range c.Ports {
			if p.PrivatePort == uint16(PostgresPort.Int()) && p.PublicPort != 0 {
				srv.HostPort = int(p.PublicPort)
			}
		}

		res[i] = srv
	}

	return res, nil
}

// Get inspects a development server by name or ID.
func (e *Engine) Get(ctx context.Context, nameOrID string) (*DevServer, error) {
	inspect, err := e.client.ContainerInspect(ctx, nameOrID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to inspect container: %s", nameOrID)
	}
	if inspect.ContainerJSONBase == nil {
		return nil, errors.Errorf("container not found: %s", nameOrID)
	}

	srv := &DevServer{
		ID:   inspect.ID,
		Name: strings.TrimPrefix(inspect.Name, "/"),
	}
	if inspect.Config != nil {
		srv.Image = inspect.Config.Image
	}
	if inspect.State != nil {
		srv.State = inspect.State.Status
	}

	if inspect.NetworkSettings != nil {
		for _, b := range inspect.NetworkSettings.Ports[PostgresPort] {
			if port, err := strconv.Atoi(b.HostPort); err == nil {
				srv.HostPort = port
				break
			}
		}
	}

	return srv, nil
}

// Down stops and removes the development server.
func (e *Engine) Down(ctx context.Context, nameOrID string) error {
	timeout := 30
	if err := e.client.ContainerStop(ctx, nameOrID, container.StopOptions{
		Timeout: &timeout,
	}); err != nil {
		return errors.Wrapf(err, "failed to stop container: %s", nameOrID)
	}

	if err := e.client.ContainerRemove(ctx, nameOrID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	}); err != nil {
		return errors.Wrapf(err, "failed to remove container: %s", nameOrID)
	}

	return nil
}
