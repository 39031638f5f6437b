package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/noticket/waf/core/config"
	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/waf"
)

// errBlocked signals a rejected value. It maps to exit code 1.
var errBlocked = errors.New("blocked")

type app struct {
	out, errOut io.Writer
	verbose     bool
	cfg         waf.EnvConfig
	log         *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "wafctl",
		Short:         "Inspect input with the noticket WAF",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(&a.cfg); err != nil {
				return err
			}
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = logger.New(
				logger.WithOutput(a.errOut),
				logger.WithLevel(level),
				logger.WithAttr(logger.Component("wafctl")),
			)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newCheckCmd(a), newReflectCmd(a), newIncidentsCmd(a), newHealthCmd(a), newServeCmd(a))
	return root
}
