package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/postgresql"
	clockService "github.com/cmlabs-hris/worktime-backend-go/internal/service/clock"
	serviceCompany "github.com/cmlabs-hris/worktime-backend-go/internal/service/company"
	liveService "github.com/cmlabs-hris/worktime-backend-go/internal/service/live"
	teamService "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
)

var staleAfter time.Duration

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Run background jobs once",
}

var jobsCloseStaleCmd = &cobra.Command{
	Use:   "close-stale",
	Short: "Close clock sessions left open too long",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		after := staleAfter
		if after <= 0 {
			after = cfg.Jobs.StaleSessionAfter
		}

		users := postgresql.NewUserRepository(db)
		access := teamService.NewAccessService(users, postgresql.NewTeamRepository(db))
		// No stream is open in this process, so live events go nowhere.
		live := liveService.NewLiveService(sse.NewHub(), jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.StreamExpiration), access)
		policies := serviceCompany.NewCompanyService(postgresql.NewCompanyRepository(db), postgresql.NewHolidayRepository(db))
		svc := clockService.NewClockService(
			postgresql.NewTransactor(db),
			postgresql.NewClockEventRepository(db),
			postgresql.NewAbsenceRepository(db),
			policies,
			access,
			live,
			utils.SystemClock{},
		)

		closed, err := svc.CloseStaleSessions(ctx, after)
		if err != nil {
			return fmt.Errorf("closed %d session(s) before failing: %w", closed, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Closed %d stale session(s)\n", closed)
		return nil
	},
}
