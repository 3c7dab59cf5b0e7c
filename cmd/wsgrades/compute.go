package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mind-engage/workshop-grades/internal/runs"
	"github.com/mind-engage/workshop-grades/internal/storage"
	"github.com/mind-engage/workshop-grades/internal/workshop"
)

type computeOptions struct {
	dataDir string
	out     string
	save    bool
	quiet   bool
}

func newComputeCmd(a *app) *cobra.Command {
	var opts computeOptions
	cmd := &cobra.Command{
		Use:   "compute <report.html>",
		Short: "Compute the grade table of a workshop report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compute(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "folder holding courseid_<id>_participants.csv (default: the report's folder)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "CSV output file (default: <report>.csv next to the report)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the run in the configured database")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the table")
	return cmd
}

func (a *app) compute(cmd *cobra.Command, reportPath string, opts computeOptions) error {
	ctx := cmd.Context()

	doc, err := a.openReport(reportPath)
	if err != nil {
		return err
	}
	dataDir := opts.dataDir
	if dataDir == "" {
		dataDir = filepath.Dir(reportPath)
	}
	folder, err := storage.NewFSStore(dataDir)
	if err != nil {
		return err
	}

	res, err := workshop.Run(ctx, doc, folder, workshop.WithLogger(a.log))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !opts.quiet {
		fmt.Fprintf(w, "%s\n%s (course %d)\ngroups: %s\n\n",
			res.WorkshopTitle, res.CourseTitle, res.CourseID, strings.Join(res.GroupIDs, ", "))
		if err := res.Grades.Print(w); err != nil {
			return err
		}
	}

	out := opts.out
	if out == "" {
		out = strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".csv"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := res.Grades.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("grades written", slog.String("file", out))

	if opts.save {
		dbh, err := a.openDB(ctx)
		if err != nil {
			return err
		}
		defer dbh.Close()
		run, err := runs.NewSQLStore(dbh).Save(ctx, runs.FromResult(res))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "saved run %s\n", run.ID)
	}
	return nil
}
