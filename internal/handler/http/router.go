package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AllowedOrigins []string
	// RequestLogger receives one access log record per request.
	RequestLogger *slog.Logger
	LoginLimiter  *middleware.RateLimiter
}

type Handlers struct {
	Auth      AuthHandler
	User      UserHandler
	Company   CompanyHandler
	Team      TeamHandler
	Clock     ClockHandler
	Absence   AbsenceHandler
	KPI       KPIHandler
	Dashboard DashboardHandler
	Report    ReportHandler
	Live      LiveHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, users user.UserRepository, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestID)

	if cfg.RequestLogger != nil {
		r.Use(httplog.RequestLogger(cfg.RequestLogger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			if cfg.LoginLimiter != nil {
				r.Use(cfg.LoginLimiter.Middleware)
			}
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		// Authenticated by a stream token in the query string
		r.Get("/live/stream", h.Live.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(users))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.User.Me)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Get("/", h.User.List)
					r.Post("/", h.User.Create)
					r.Get("/{id}", h.User.Get)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Deactivate)
				})
			})

			r.Route("/company", func(r chi.Router) {
				r.Get("/", h.Company.Get)
				r.Get("/holidays", h.Company.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionCompanyManage))
					r.Put("/policy", h.Company.UpdatePolicy)
					r.Post("/holidays", h.Company.CreateHoliday)
					r.Delete("/holidays/{id}", h.Company.DeleteHoliday)
				})
			})

			r.Route("/teams", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTeamView))
					r.Get("/", h.Team.List)
					r.Get("/{id}", h.Team.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTeamManage))
					r.Post("/", h.Team.Create)
					r.Put("/{id}", h.Team.Update)
					r.Delete("/{id}", h.Team.Delete)
					r.Post("/{id}/members", h.Team.AddMember)
					r.Delete("/{id}/members/{userID}", h.Team.RemoveMember)
				})
			})

			r.Route("/clock", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionClockOwn))
					r.Post("/in", h.Clock.ClockIn)
					r.Post("/out", h.Clock.ClockOut)
					r.Get("/status", h.Clock.Status)
					r.Get("/events/my", h.Clock.ListMine)
				})

				r.With(middleware.RequirePermission(user.PermissionClockViewTeam)).Get("/events", h.Clock.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionClockManage))
					r.Post("/events", h.Clock.CreateManual)
					r.Delete("/events/{id}", h.Clock.Delete)
				})
			})

			r.Route("/absences", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAbsenceOwn))
					r.Post("/", h.Absence.Create)
					r.Get("/my", h.Absence.ListMine)
					r.Post("/{id}/cancel", h.Absence.Cancel)
				})

				// Requester, their manager or an admin
				r.Get("/{id}", h.Absence.Get)

				r.With(middleware.RequirePermission(user.PermissionAbsenceViewTeam)).Get("/", h.Absence.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAbsenceApprove))
					r.Post("/{id}/approve", h.Absence.Approve)
					r.Post("/{id}/reject", h.Absence.Reject)
				})
			})

			r.Route("/kpi", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionKPIOwn)).Get("/me", h.KPI.Me)
				// Self or a manager of the user's team
				r.Get("/users/{id}", h.KPI.User)
				r.With(middleware.RequirePermission(user.PermissionKPIViewTeam)).Get("/teams/{id}", h.KPI.Team)
				r.With(middleware.RequirePermission(user.PermissionKPIViewCompany)).Get("/company", h.KPI.Company)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/employee", h.Dashboard.Employee)
				r.With(middleware.RequirePermission(user.PermissionDashboardTeam)).Get("/manager", h.Dashboard.Manager)
				r.With(middleware.RequirePermission(user.PermissionDashboardEnterprise)).Get("/enterprise", h.Dashboard.Enterprise)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/timesheet", h.Report.Timesheet)
				r.Get("/timesheet/export", h.Report.ExportTimesheet)
				r.Get("/absences", h.Report.Absences)
			})

			r.Post("/live/token", h.Live.Token)
		})
	})
	return r
}
