package server

import (
	"crypto/tls"
	"fmt"
	"time"
)

// Config is the listener configuration of wafctl serve.
type Config struct {
	Addr            string        `env:"WAF_LISTEN_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"WAF_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WAF_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"WAF_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"WAF_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxHeaderBytes  int           `env:"WAF_MAX_HEADER_BYTES" envDefault:"1048576"`
	TLSCertFile     string        `env:"WAF_TLS_CERT_FILE"`
	TLSKeyFile      string        `env:"WAF_TLS_KEY_FILE"`
}

// NewFromConfig builds a Server from cfg. opts are applied after the config
// and win over it. TLS is enabled when both the cert and key files are set.
func NewFromConfig(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Addr == "" {
		return nil, ErrMissingAddress
	}

	var all []Option
	if cfg.ReadTimeout > 0 {
		all = append(all, WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.WriteTimeout > 0 {
		all = append(all, WithWriteTimeout(cfg.WriteTimeout))
	}
	if cfg.IdleTimeout > 0 {
		all = append(all, WithIdleTimeout(cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout > 0 {
		all = append(all, WithShutdownTimeout(cfg.ShutdownTimeout))
	}
	if cfg.MaxHeaderBytes > 0 {
		all = append(all, WithMaxHeaderBytes(cfg.MaxHeaderBytes))
	}
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadTLS, err)
		}
		tc := DefaultTLSConfig()
		tc.Certificates = []tls.Certificate{cert}
		all = append(all, WithTLS(tc))
	}

	return New(cfg.Addr, append(all, opts...)...), nil
}
