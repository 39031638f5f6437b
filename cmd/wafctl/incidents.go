package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/threatlog"
)

func newIncidentsCmd(a *app) *cobra.Command {
	var (
		path   string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "List the most recent incidents in the threat log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = a.cfg.LogPath
			}
			records, err := threatlog.ReadFile(path)
			if err != nil {
				return err
			}
			a.log.DebugContext(cmd.Context(), "threat log read",
				logger.Sink("file"),
				logger.Count("records", len(records)),
			)

			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if records == nil {
					records = []threatlog.Record{}
				}
				return enc.Encode(records)
			}

			if len(records) == 0 {
				fmt.Fprintln(a.out, "no incidents")
				return nil
			}
			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tINCIDENT\tIP\tMETHOD\tURI\tTHREAT")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Timestamp, r.IncidentID, r.IP, r.Method, r.URI, r.Threat)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&path, "log", "", "Threat log file (default: WAF_LOG_PATH)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most n incidents, newest last (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}
