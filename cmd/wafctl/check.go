package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noticket/waf/core/waf"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		modeName string
		sanitize bool
		noLog    bool
	)

	cmd := &cobra.Command{
		Use:   "check <value>",
		Short: "Validate a value and print it, or the reason it was blocked",
		Long: "Runs the value through the pattern scan, the decode loop and the\n" +
			"whitelist of --mode. Clean values are printed unchanged, or\n" +
			"HTML-encoded with --sanitize. Blocked values exit with status 1.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := parseModeFlag(modeName)
			if err != nil {
				return err
			}

			cfg := a.cfg
			if noLog {
				cfg.LogEnabled = false
				cfg.RedisURL = ""
				cfg.DatabaseURL = ""
				cfg.MongoURL = ""
				cfg.OpenSearchAddresses = nil
				cfg.Metrics = false
			}
			rt, err := waf.Setup(cmd.Context(), cfg, a.log, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			var out string
			if sanitize {
				out, err = rt.Engine.SanitizeString(cmd.Context(), args[0], mode)
			} else {
				out, err = rt.Engine.PassString(cmd.Context(), args[0], mode)
			}
			if v, ok := waf.AsViolation(err); ok {
				fmt.Fprintf(a.out, "blocked: %s\n", v.Threat)
				fmt.Fprintf(a.out, "incident: %s\n", v.Incident.ID)
				fmt.Fprintf(a.out, "kind: %s\n", v.Kind)
				if v.Category != "" {
					fmt.Fprintf(a.out, "category: %s\n", v.Category)
				}
				return errBlocked
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modeName, "mode", "m", string(waf.ModeStrict), "Validation mode ("+modeList()+")")
	cmd.Flags().BoolVarP(&sanitize, "sanitize", "s", false, "HTML-encode the value when it passes")
	cmd.Flags().BoolVar(&noLog, "no-log", false, "Do not record blocked values in any sink")
	return cmd
}

func parseModeFlag(name string) (waf.Mode, error) {
	m, err := waf.LookupMode(name)
	if err != nil {
		return "", fmt.Errorf("%w (want %s)", err, modeList())
	}
	return m, nil
}

func modeList() string {
	names := make([]string, 0, len(waf.Modes()))
	for _, m := range waf.Modes() {
		names = append(names, string(m))
	}
	return strings.Join(names, "|")
}

func newReflectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reflect <value>",
		Short: "HTML-encode a value for display without validating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, waf.ReflectString(args[0]))
			return nil
		},
	}
}
