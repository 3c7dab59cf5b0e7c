package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/workshop-grades/internal/runs"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		courseID int
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbh, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer dbh.Close()
			list, err := runs.NewSQLStore(dbh).List(cmd.Context(), runs.ListOpts{CourseID: courseID, Limit: limit})
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tCOURSE\tWORKSHOP\tROWS")
			for _, s := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\n", s.ID,
					time.Unix(s.CreatedAt, 0).Format(time.DateTime), s.CourseID, s.WorkshopTitle, s.Participants)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&courseID, "course", 0, "only runs of this course id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum runs to list")
	return cmd
}
