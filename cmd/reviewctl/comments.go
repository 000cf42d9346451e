package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewledger/internal/domain/model"
)

func newCommentsCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "comments <hash>",
		Short: "List the comments of a finding in the order they were recorded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.CommentKind
			if kind != "" {
				parsed, err := model.ParseCommentKind(kind)
				if err != nil {
					return err
				}
				filter = parsed
			}

			comments, err := a.reviewSvc.ListComments(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tAUTHOR\tCREATED\tTEXT")
			for _, c := range comments {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					c.ID, c.Kind, c.Author, c.CreatedAt.Format(time.RFC3339), c.Text)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list system or user comments")

	return cmd
}
