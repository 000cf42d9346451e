package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

func newSetCmd(a *app) *cobra.Command {
	var author string

	cmd := &cobra.Command{
		Use:   "set <hash> <status> [comment]",
		Short: "Change the review status of a finding",
		Long: `Change the review status of a finding.

Status is one of unreviewed, confirmed, false_positive or intentional.
Resubmitting the current status and comment is accepted and records nothing.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseReviewStatus(args[1])
			if err != nil {
				return err
			}

			var comment string
			if len(args) == 3 {
				comment = args[2]
			}

			changed, err := a.reviewSvc.ChangeReviewStatus(cmd.Context(), author, args[0], status, comment)
			if err != nil {
				return err
			}

			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], status.Label())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "Anonymous", "name recorded on the audit comment")

	return cmd
}
