package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/noticket/waf/core/config"
	"github.com/noticket/waf/core/handler"
	"github.com/noticket/waf/core/health"
	"github.com/noticket/waf/core/proxy"
	"github.com/noticket/waf/core/response"
	"github.com/noticket/waf/core/server"
	"github.com/noticket/waf/core/waf"
	"github.com/noticket/waf/middleware"
	"github.com/noticket/waf/pkg/penalty"
)

type serveConfig struct {
	Server    server.Config
	Upstream  string `env:"WAF_UPSTREAM"`
	BodyLimit int64  `env:"WAF_BODY_LIMIT" envDefault:"10485760"`
	// Clients with BanThreshold blocks inside BanWindow are rejected for
	// BanDuration. Zero disables banning.
	BanThreshold int           `env:"WAF_BAN_THRESHOLD" envDefault:"0"`
	BanWindow    time.Duration `env:"WAF_BAN_WINDOW" envDefault:"10m"`
	BanDuration  time.Duration `env:"WAF_BAN_DURATION" envDefault:"15m"`
}

type bctx = *handler.BaseContext

func newServeCmd(a *app) *cobra.Command {
	var listen, upstream string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a reverse proxy that validates every request before forwarding it",
		Long: "Every query and form field is checked against the policy in\n" +
			"WAF_POLICY_FILE. Blocked requests get the incident page; clean ones\n" +
			"are forwarded to --upstream. /health/live, /health/ready and, with\n" +
			"WAF_METRICS, /metrics are served locally. With WAF_BAN_THRESHOLD\n" +
			"set, clients blocked that many times within WAF_BAN_WINDOW are\n" +
			"rejected outright for WAF_BAN_DURATION.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc serveConfig
			if err := config.Load(&sc); err != nil {
				return err
			}
			if listen != "" {
				sc.Server.Addr = listen
			}
			if upstream != "" {
				sc.Upstream = upstream
			}
			target, err := parseUpstream(sc.Upstream)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			rt, err := waf.Setup(ctx, a.cfg, a.log, reg)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv, err := server.NewFromConfig(sc.Server, server.WithLogger(a.log))
			if err != nil {
				return err
			}

			box := penalty.New(penalty.Config{
				Threshold: sc.BanThreshold,
				Window:    sc.BanWindow,
				BanFor:    sc.BanDuration,
			}, penalty.WithLogger(a.log))

			h := newGateway(rt, target, sc.BodyLimit, box, a.log, metricsHandler(a.cfg, reg))
			eg, ctx := errgroup.WithContext(ctx)
			eg.Go(srv.Run(ctx, h))
			eg.Go(box.Run(ctx))
			return eg.Wait()
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default WAF_LISTEN_ADDR or :8080)")
	cmd.Flags().StringVarP(&upstream, "upstream", "u", "", "Upstream base URL (default WAF_UPSTREAM)")
	return cmd
}

func parseUpstream(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("an upstream is required (--upstream or WAF_UPSTREAM)")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse upstream: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("upstream %q must be an absolute http(s) URL", raw)
	}
	return u, nil
}

func metricsHandler(cfg waf.EnvConfig, reg *prometheus.Registry) http.Handler {
	if !cfg.Metrics {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// newGateway routes health and metrics locally and everything else through
// the WAF to upstream. metrics may be nil.
func newGateway(rt *waf.Runtime, upstream *url.URL, bodyLimit int64, box *penalty.Box, log *slog.Logger, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /health/live", handler.Std(health.Liveness[bctx]))
	mux.Handle("GET /health/ready", handler.Adapt(
		health.Readiness[bctx](log, rt.Checks()),
		handler.NewContext, response.ErrorHandler[bctx],
	))
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.Handle("/", handler.Adapt(
		handler.Chain(proxy.Handler[bctx](proxy.New(upstream, log)),
			middleware.RequestIDWithConfig[bctx](middleware.RequestIDConfig{UseExisting: true}),
			middleware.ClientIP[bctx](),
			middleware.Penalty[bctx](rt.Engine, box, middleware.PenaltyConfig{Logger: log}),
			proxy.BufferBody[bctx](bodyLimit),
			middleware.WAF[bctx](rt.Engine, middleware.WAFConfig{
				Policy:  rt.Policy,
				Logger:  log,
				OnBlock: middleware.StrikeOnBlock(box, log),
			}),
		),
		handler.NewContext, response.ErrorHandler[bctx],
	))
	return mux
}
