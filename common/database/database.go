package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shenanigigs/common/errors"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	Username        string
	Password        string
	Database        string
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

// Hosts splits a comma separated DSN into addresses, dropping any query string.
func Hosts(dsn string) []string {
	hostPart := strings.SplitN(dsn, "?", 2)[0]
	var hosts []string
	for _, h := range strings.Split(hostPart, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

const defaultDialTimeout = 30 * time.Second

// clickhouseOptions translates Options into the driver's native options.
func clickhouseOptions(opts Options, hosts []string) *clickhouse.Options {
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     hosts,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout:     dialTimeout,
		MaxOpenConns:    opts.MaxOpenConns,
		MaxIdleConns:    opts.MaxIdleConns,
		ConnMaxLifetime: opts.ConnMaxLifetime,
	}
}

// New opens and pings a ClickHouse connection. A failed ping closes the
// connection before returning.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	hosts := Hosts(opts.DSN)
	if len(hosts) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("clickhouse dsn %q has no hosts", opts.DSN), nil)
	}

	chOpts := clickhouseOptions(opts, hosts)
	conn, err := clickhouse.Open(chOpts)
	if err != nil {
		return nil, errors.Unavailable("opening clickhouse connection", err)
	}

	if err := conn.Ping(ctx); err != nil {
		if cerr := conn.Close(); cerr != nil {
			logger.Warn("failed to close clickhouse connection", zap.Error(cerr))
		}
		return nil, errors.Unavailable("pinging clickhouse", err)
	}

	logger.Info("Connected to ClickHouse",
		zap.Strings("hosts", hosts),
		zap.String("database", opts.Database),
		zap.Int("max_open_conns", chOpts.MaxOpenConns),
		zap.Duration("dial_timeout", chOpts.DialTimeout))

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

func (db *Database) Close() error {
	return db.conn.Close()
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
