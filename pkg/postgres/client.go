package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

type (
	// Querier runs queries against an open session.
	//
	// Query accepts text with several statements when no arguments are given
	// and returns the rows of the last one as strings. Select runs a single
	// parameterised statement and returns decoded values.
	Querier interface {
		Query(ctx context.Context, sql string, args ...any) ([]Row, error)
		Select(ctx context.Context, sql string, args ...any) ([]Row, error)
	}

	// DB is a migration target. Connect must be safe to call more than once.
	DB interface {
		Querier
		Connect(ctx context.Context) error
		Column(ctx context.Context, column, sql string, args ...any) ([]any, error)
		Close(ctx context.Context) error
	}

	// Row maps column names to values.
	Row map[string]any

	// ClientOptions configure how a Client connects.
	ClientOptions struct {
		TLSSettings
	}

	// Client is a DB backed by a single pgx connection.
	Client struct {
		dsn     string
		options ClientOptions
		conn    *pgx.Conn
	}
)

// NewClient returns an unconnected client for the given connection string.
// Both postgres:// URLs and keyword/value DSNs are accepted.
func NewClient(dsn string) *Client {
	return NewClientWithOptions(dsn, ClientOptions{})
}

// NewClientWithOptions returns an unconnected client with TLS settings.
//
// Example:
//
//	client := postgres.NewClientWithOptions(dsn, postgres.ClientOptions{
//		TLSSettings: postgres.TLSSettings{
//			CAFile:   "/etc/ssl/pg/ca.crt",
//			CertFile: "/etc/ssl/pg/client.crt",
//			KeyFile:  "/etc/ssl/pg/client.key",
//		},
//	})
func NewClientWithOptions(dsn string, opts ClientOptions) *Client {
	return &Client{dsn: dsn, options: opts}
}

// FromConn wraps an open connection. Connect is a no-op for the result.
func FromConn(conn *pgx.Conn) *Client {
	return &Client{conn: conn}
}

// Connect opens the session if it is not open yet.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	cfg, err := pgx.ParseConfig(c.dsn)
	if err != nil {
		return errors.Wrap(err, "failed to parse database url")
	}

	if c.options.Enabled() {
		tlsCfg, err := GetTLSConfig(c.options.TLSSettings)
		if err != nil {
			return err
		}

		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = cfg.Host
		}

		// No plain text fallback once TLS files are configured.
		cfg.TLSConfig = tlsCfg
		cfg.Fallbacks = nil
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}

	c.conn = conn
	return nil
}

// Query executes sql. Without args the text goes through the simple query
// protocol, so it may hold several statements; the rows of the last result
// are returned with textual values.
func (c *Client) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	if len(args) > 0 {
		return c.Select(ctx, sql, args...)
	}

	results, err := c.conn.PgConn().Exec(ctx, sql).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}

	if len(results) == 0 {
		return []Row{}, nil
	}

	return textRows(results[len(results)-1]), nil
}

// Select runs a single statement and decodes each row into a Row.
func (c *Client) Select(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read rows")
	}

	res := make([]Row, len(maps))
	for i, m := range maps {
		res[i] = Row(m)
	}

	return res, nil
}

// Column runs Select and returns the values of a single column.
func (c *Client) Column(ctx context.Context, column, sql string, args ...any) ([]any, error) {
	rows, err := c.Select(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(rows))
	for i, row := range rows {
		values[i] = row[column]
	}

	return values, nil
}

// Close closes the session. Closing an unconnected client does nothing.
func (c *Client) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close(ctx)
	c.conn = nil
	return errors.Wrap(err, "failed to close connection")
}

// Wait connects to dsn until it succeeds or ctx is done. It is used to wait
// for a freshly started server to accept connections.
func Wait(ctx context.Context, dsn string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		client := NewClient(dsn)
		err := client.Connect(ctx)
		if err == nil {
			return client.Close(ctx)
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(err, "database did not become ready")
		case <-ticker.C:
		}
	}
}

func (c *Client) ready() error {
	if c.conn == nil {
		return errors.New("not connected")
	}

	return nil
}

func textRows(res *pgconn.Result) []Row {
	rows := make([]Row, len(res.Rows))
	for i, values := range res.Rows {
		row := make(Row, len(res.FieldDescriptions))
		for j, fd := range res.FieldDescriptions {
			if values[j] == nil {
				row[fd.Name] = nil
				continue
			}

			row[fd.Name] = string(values[j])
		}

		rows[i] = row
	}

	return rows
}
