package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/noticket/waf/core/health"
	"github.com/noticket/waf/core/waf"
)

var errUnhealthy = errors.New("one or more sinks are unreachable")

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping every configured network sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := waf.Setup(cmd.Context(), a.cfg, a.log, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			checks := rt.Checks()
			if len(checks) == 0 {
				fmt.Fprintln(a.out, "no network sinks configured")
				return nil
			}

			failed := false
			for _, name := range slices.Sorted(maps.Keys(checks)) {
				if err := health.Run(cmd.Context(), []string{name}, checks); err != nil {
					failed = true
					fmt.Fprintf(a.out, "%s\tdown\t%v\n", name, err)
					continue
				}
				fmt.Fprintf(a.out, "%s\tok\n", name)
			}
			if failed {
				return errUnhealthy
			}
			return nil
		},
	}
}
