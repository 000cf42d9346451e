package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <run> <file.sarif>",
		Short: "Register the findings of a SARIF log under an analysis run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open report: %w", err)
			}
			defer f.Close()

			summary, err := a.importSvc.Import(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d imported, %d skipped\n",
				summary.RunName, summary.Imported, summary.Skipped)
			return nil
		},
	}
}
