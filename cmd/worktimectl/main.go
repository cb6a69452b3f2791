// Command worktimectl runs maintenance tasks against the worktime database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/worktime-backend-go/internal/config"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "worktimectl",
	Short:         "Maintenance tool for the worktime backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		slog.SetDefault(logging.NewLogger(logging.Config{
			Level:       level,
			Format:      "text",
			Output:      cmd.ErrOrStderr(),
			ServiceName: "worktimectl",
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	addTimesheetFlags(reportTimesheetCmd)
	reportCmd.AddCommand(reportTimesheetCmd)

	jobsCloseStaleCmd.Flags().DurationVar(&staleAfter, "after", 0, "Close sessions open longer than this (default JOB_STALE_SESSION_AFTER)")
	jobsCmd.AddCommand(jobsCloseStaleCmd)

	rootCmd.AddCommand(migrateCmd, reportCmd, jobsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDB loads the configuration and connects to PostgreSQL.
func openDB(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}
