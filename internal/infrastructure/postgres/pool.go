package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sirupsen/logrus"
)

type PoolOptions struct {
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	// Logger receives pgx query traces at Warn and above. Debug level also
	// traces every statement.
	Logger *logrus.Logger
}

func traceLogger(logger *logrus.Logger) *tracelog.TraceLog {
	level := tracelog.LogLevelWarn
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = tracelog.LogLevelDebug
	}
	return &tracelog.TraceLog{
		LogLevel: level,
		Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
			entry := logger.WithFields(logrus.Fields(data)).WithField("component", "pgx")
			switch lvl {
			case tracelog.LogLevelError:
				entry.Error(msg)
			case tracelog.LogLevelWarn:
				entry.Warn(msg)
			case tracelog.LogLevelInfo:
				entry.Info(msg)
			default:
				entry.Debug(msg)
			}
		}),
	}
}

// NewPool opens and pings a pgx pool.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLife > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLife
	}
	// feed queries are few and hot; cache their plans per connection
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	cfg.ConnConfig.StatementCacheCapacity = 256
	if opts.Logger != nil {
		cfg.ConnConfig.Tracer = traceLogger(opts.Logger)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
