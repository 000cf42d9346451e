package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/reviewledger/internal/adapter/driven/sarif"
	sqliteadapter "github.com/ericfisherdev/reviewledger/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewledger/internal/application"
	"github.com/ericfisherdev/reviewledger/internal/logger"
)

// app holds the services shared by every subcommand. It is populated by the
// root command's PersistentPreRunE and torn down in PersistentPostRunE.
type app struct {
	dbPath   string
	logLevel string

	db        *sqliteadapter.DB
	reviewSvc *application.ReviewStatusService
	importSvc *application.ImportService
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "reviewctl inspects and changes review statuses of static-analysis findings",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	defaultDB := os.Getenv("REVIEWLEDGER_DB_PATH")
	if defaultDB == "" {
		defaultDB = "reviewledger.db"
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDB, "path to the SQLite database")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newImportCmd(a),
		newSetCmd(a),
		newShowCmd(a),
		newCommentsCmd(a),
	)

	return root
}

func (a *app) open(ctx context.Context, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewLogger(logger.Config{Level: a.logLevel, Format: "text"}, logOut)
	slog.SetDefault(log)

	db, err := sqliteadapter.NewDB(ctx, a.dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", a.dbPath, err)
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return err
	}

	findings := sqliteadapter.NewFindingRepo(db)
	a.db = db
	a.reviewSvc = application.NewReviewStatusService(
		findings,
		sqliteadapter.NewStatusRepo(db),
		sqliteadapter.NewCommentRepo(db),
		nil,
		application.ReviewStatusConfig{},
		log,
	)
	a.importSvc = application.NewImportService(sarif.NewParser(), findings, log)

	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
