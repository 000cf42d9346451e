package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Show a finding and its current review data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.reviewSvc.GetReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if outputJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "hash:\t%s\n", report.Finding.Hash)
			fmt.Fprintf(w, "run:\t%s\n", report.Finding.RunName)
			fmt.Fprintf(w, "checker:\t%s\n", report.Finding.CheckerID)
			fmt.Fprintf(w, "location:\t%s:%d\n", report.Finding.FilePath, report.Finding.Line)
			fmt.Fprintf(w, "status:\t%s\n", report.Review.Status.Label())
			fmt.Fprintf(w, "comment:\t%s\n", report.Review.Comment)
			if !report.Review.UpdatedAt.IsZero() {
				fmt.Fprintf(w, "reviewed:\t%s by %s\n", report.Review.UpdatedAt.Format(time.RFC822), report.Review.Author)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}
