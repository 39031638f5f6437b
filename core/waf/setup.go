package waf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/threatlog"
)

// EnvConfig is the environment configuration of a WAF deployment.
// Load it with config.Load.
type EnvConfig struct {
	LogEnabled          bool     `env:"WAF_LOG_ENABLED" envDefault:"true"`
	LogPath             string   `env:"WAF_LOG_PATH" envDefault:"logs/waf_threats.log"`
	MaxDecodeIterations int      `env:"WAF_MAX_DECODE" envDefault:"5"`
	RedisURL            string   `env:"WAF_REDIS_URL"`
	RedisStream         string   `env:"WAF_REDIS_STREAM" envDefault:"waf:threats"`
	RedisMaxLen         int64    `env:"WAF_REDIS_MAXLEN" envDefault:"10000"`
	DatabaseURL         string   `env:"WAF_DATABASE_URL"`
	MongoURL            string   `env:"WAF_MONGO_URL"`
	MongoDatabase       string   `env:"WAF_MONGO_DATABASE" envDefault:"waf"`
	OpenSearchAddresses []string `env:"WAF_OPENSEARCH_ADDRESSES" envSeparator:","`
	OpenSearchUsername  string   `env:"WAF_OPENSEARCH_USERNAME"`
	OpenSearchPassword  string   `env:"WAF_OPENSEARCH_PASSWORD"`
	OpenSearchIndex     string   `env:"WAF_OPENSEARCH_INDEX" envDefault:"waf-threats"`
	PolicyFile          string   `env:"WAF_POLICY_FILE"`
	Metrics             bool     `env:"WAF_METRICS" envDefault:"false"`
}

// Runtime bundles an engine with the policy and connections built for it.
type Runtime struct {
	Engine *Engine
	Policy *Policy

	closers []func() error
	checks  map[string]func(context.Context) error
}

// Checks returns a ping per network sink, keyed by sink name. Callers use
// them for readiness probes.
func (r *Runtime) Checks() map[string]func(context.Context) error {
	out := make(map[string]func(context.Context) error, len(r.checks))
	for name, fn := range r.checks {
		out[name] = fn
	}
	return out
}

// Close releases the sink connections.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Setup builds the sinks named by cfg, loads the policy and returns a ready
// engine. reg receives the metrics collector when cfg.Metrics is set; nil
// means the default registry.
func Setup(ctx context.Context, cfg EnvConfig, log *slog.Logger, reg prometheus.Registerer) (*Runtime, error) {
	if log == nil {
		log = slog.Default()
	}
	rt := &Runtime{checks: map[string]func(context.Context) error{}}

	policy, err := LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	rt.Policy = policy

	var sinks []threatlog.Sink
	if cfg.LogEnabled {
		sinks = append(sinks, threatlog.NewFileSink(cfg.LogPath))
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("file"), slog.String("path", cfg.LogPath))
	}

	if cfg.RedisURL != "" {
		client, err := threatlog.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, errors.Join(fmt.Errorf("waf: redis ping: %w", err), rt.Close())
		}
		rt.closers = append(rt.closers, client.Close)
		rt.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		sinks = append(sinks, threatlog.NewRedisSink(client, cfg.RedisStream, cfg.RedisMaxLen))
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("redis"), slog.String("stream", cfg.RedisStream))
	}

	if cfg.DatabaseURL != "" {
		pool, err := threatlog.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		rt.checks["postgres"] = pool.Ping
		sinks = append(sinks, threatlog.NewPostgresSink(pool))
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("postgres"))
	}

	if cfg.MongoURL != "" {
		client, err := threatlog.ConnectMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		rt.closers = append(rt.closers, func() error { return client.Disconnect(context.Background()) })
		rt.checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		coll := client.Database(cfg.MongoDatabase).Collection(threatlog.DefaultCollection)
		sinks = append(sinks, threatlog.NewMongoSink(coll))
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("mongo"), slog.String("database", cfg.MongoDatabase))
	}

	if len(cfg.OpenSearchAddresses) > 0 {
		client, err := threatlog.NewOpenSearchClient(ctx, cfg.OpenSearchAddresses, cfg.OpenSearchUsername, cfg.OpenSearchPassword)
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		sinks = append(sinks, threatlog.NewOpenSearchSink(client, cfg.OpenSearchIndex))
		rt.checks["opensearch"] = func(ctx context.Context) error { return threatlog.PingOpenSearch(ctx, client) }
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("opensearch"), slog.String("index", cfg.OpenSearchIndex))
	}

	if cfg.Metrics {
		m, err := threatlog.NewMetricsSink(reg)
		if err != nil {
			return nil, errors.Join(err, rt.Close())
		}
		sinks = append(sinks, m)
		log.DebugContext(ctx, "threat sink enabled", logger.Sink("metrics"))
	}

	rt.Engine = New(Config{
		Patterns:            policy.PatternSet(),
		MaxDecodeIterations: cfg.MaxDecodeIterations,
		DisableLogging:      len(sinks) == 0,
		Sink:                threatlog.Multi(sinks...),
		Logger:              log,
	})
	return rt, nil
}
