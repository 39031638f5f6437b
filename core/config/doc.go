// Package config loads typed configuration from the environment.
//
// A .env file in the working directory is read once, on first use, and
// never overrides variables that are already set. Struct fields are filled
// by caarlos0/env, so the usual `env` and `envDefault` tags apply:
//
//	var cfg waf.EnvConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each struct type is parsed once and cached. Later Load calls for the same
// type copy the cached value, even if the environment has changed since.
// Tests that set variables per case call Reset first.
package config
