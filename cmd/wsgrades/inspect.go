package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <report.html>",
		Short: "Show what a report is about without computing grades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.openReport(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			title, err := doc.WorkshopTitle()
			if err != nil {
				title = "(unknown)"
			}
			course, err := doc.CourseTitle()
			if err != nil {
				course = "(unknown)"
			}
			fmt.Fprintf(w, "workshop: %s\ncourse:   %s\n", title, course)

			id, err := doc.CourseID()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "course id: %d\n", id)

			groups, err := doc.GroupIDs()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "groups:   %s\n", strings.Join(groups, ", "))

			rows, err := doc.Rows()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "rows:     %d\n", len(rows))

			table, err := doc.Grades()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "participants: %s\n", strings.Join(table.Names(), ", "))
			return nil
		},
	}
}
