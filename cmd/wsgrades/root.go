package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mind-engage/workshop-grades/internal/applog"
	"github.com/mind-engage/workshop-grades/internal/config"
	"github.com/mind-engage/workshop-grades/internal/db"
	"github.com/mind-engage/workshop-grades/internal/report"
)

// app is the state shared by the subcommands.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:           "wsgrades",
		Short:         "Compute workshop grades from a grades report and a participants export",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			a.cfg = cfg
			a.log = applog.NewWithWriter(cmd.ErrOrStderr(), cfg.Log)
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug diagnostics")

	root.AddCommand(
		newComputeCmd(a),
		newInspectCmd(a),
		newRunsCmd(a),
		newHashPasswordCmd(),
	)
	return root
}

func (a *app) openReport(path string) (*report.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := report.Parse(f, report.WithLogger(a.log))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	return db.Open(ctx, db.Driver(a.cfg.Database.Driver), a.cfg.Database.DSN)
}
