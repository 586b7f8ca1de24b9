// Package docker runs PostgreSQL servers in Docker for integration tests and
// local development.
//
// Two flavours are provided:
//
//   - Container wraps the testcontainers postgres module. The server lives as
//     long as the process that started it and is used by integration tests.
//   - Engine talks to the Docker API directly to manage a named, labelled
//     development server that survives between `pgmigrate dev up` and
//     `pgmigrate dev down`.
//
// # Usage Example
//
//	container := docker.NewWithOptions(docker.DockerOptions{Version: "16"})
//
//	ctx := context.Background()
//	defer container.Stop(ctx)
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	dsn, _ := container.GetDSN(ctx)
//	client := postgres.NewClient(dsn)
//	defer client.Close(ctx)
//
// Both flavours bind the alpine build of the official postgres image.
package docker
