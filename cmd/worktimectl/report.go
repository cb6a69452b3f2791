package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/worktime-backend-go/internal/repository/postgresql"
	serviceCompany "github.com/cmlabs-hris/worktime-backend-go/internal/service/company"
	kpiService "github.com/cmlabs-hris/worktime-backend-go/internal/service/kpi"
	reportService "github.com/cmlabs-hris/worktime-backend-go/internal/service/report"
	teamService "github.com/cmlabs-hris/worktime-backend-go/internal/service/team"
)

type timesheetFlags struct {
	companyID string
	month     int
	year      int
	teamID    string
}

var timesheetOpts timesheetFlags

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce company reports",
}

var reportTimesheetCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Write the monthly timesheet of a company as CSV to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !validator.IsValidUUID(timesheetOpts.companyID) {
			return errors.New("--company must be a company id")
		}

		ctx := cmd.Context()
		cfg, db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		clk := utils.SystemClock{}
		users := postgresql.NewUserRepository(db)
		teams := postgresql.NewTeamRepository(db)
		events := postgresql.NewClockEventRepository(db)
		absences := postgresql.NewAbsenceRepository(db)
		policies := serviceCompany.NewCompanyService(postgresql.NewCompanyRepository(db), postgresql.NewHolidayRepository(db))

		svc := reportService.NewReportService(
			kpiService.NewCalculator(events, absences, policies, clk,
				kpiService.WithLookback(cfg.Jobs.StaleSessionAfter+cfg.Jobs.Interval)),
			teamService.NewAccessService(users, teams),
			absences,
			clk,
		)
		return exportTimesheet(ctx, svc, timesheetOpts, cmd.OutOrStdout())
	},
}

func addTimesheetFlags(cmd *cobra.Command) {
	now := utils.SystemClock{}.Now()
	cmd.Flags().StringVar(&timesheetOpts.companyID, "company", "", "Company id")
	cmd.Flags().IntVar(&timesheetOpts.month, "month", int(now.Month()), "Month (1-12)")
	cmd.Flags().IntVar(&timesheetOpts.year, "year", now.Year(), "Year")
	cmd.Flags().StringVar(&timesheetOpts.teamID, "team", "", "Restrict to one team")
	_ = cmd.MarkFlagRequired("company")
}

// exportTimesheet runs the export as a company admin.
func exportTimesheet(ctx context.Context, svc report.ReportService, opts timesheetFlags, w io.Writer) error {
	req := report.TimesheetRequest{Month: opts.month, Year: opts.year}
	if opts.teamID != "" {
		req.TeamID = &opts.teamID
	}

	ctx = user.WithActor(ctx, user.SystemActor(opts.companyID))
	return svc.ExportTimesheetCSV(ctx, req, w)
}
