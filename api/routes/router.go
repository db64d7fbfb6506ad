package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freightport/terminal-backend/api/controllers"
	"github.com/freightport/terminal-backend/api/middleware"
	"github.com/freightport/terminal-backend/internal/announcements"
	"github.com/freightport/terminal-backend/internal/appointments"
	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/internal/auth"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/internal/drivers"
	"github.com/freightport/terminal-backend/internal/halls"
	"github.com/freightport/terminal-backend/internal/users"
	"github.com/freightport/terminal-backend/internal/waybills"
	"github.com/freightport/terminal-backend/pkg/auth/session"
	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/db"
	"github.com/freightport/terminal-backend/pkg/enums"
	"github.com/freightport/terminal-backend/pkg/logger"
	"github.com/freightport/terminal-backend/pkg/metrics"
	"github.com/freightport/terminal-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Cargo         cargo.Service
	Announcements announcements.Service
	Appointments  appointments.Service
	Waybills      waybills.Service
	Halls         halls.Service
	Drivers       drivers.Service
	Audit         audit.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	registry *metrics.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	if registry != nil {
		r.Use(registry.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", registry.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(svcs.Users, svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessionManager, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/v1/users/me", controllers.UserMe(svcs.Users, logg))

		r.Route("/v1/cargos", func(r chi.Router) {
			producer := middleware.RequireRole(string(enums.UserRoleProducer), logg)
			freight := middleware.RequireRole(string(enums.UserRoleFreightCompany), logg)
			driver := middleware.RequireRole(string(enums.UserRoleDriver), logg)

			r.With(producer).Post("/", controllers.CargoCreate(svcs.Cargo, logg))
			r.With(producer).Get("/mine", controllers.CargoListMine(svcs.Cargo, logg))
			r.With(freight).Get("/submitted", controllers.CargoListSubmitted(svcs.Cargo, logg))
			r.With(freight).Get("/accepted", controllers.CargoListAccepted(svcs.Cargo, logg))

			r.Get("/{cargoId}", controllers.CargoDetail(svcs.Cargo, logg))
			r.Get("/{cargoId}/history", controllers.CargoHistory(svcs.Cargo, logg))

			r.With(producer).Post("/{cargoId}/submit", controllers.CargoSubmit(svcs.Cargo, logg))
			r.With(freight).Post("/{cargoId}/accept", controllers.CargoAccept(svcs.Cargo, logg))
			r.With(freight).Post("/{cargoId}/reject", controllers.CargoReject(svcs.Cargo, logg))
			r.With(freight).Patch("/{cargoId}/fare", controllers.CargoSetFare(svcs.Cargo, logg))
			r.Post("/{cargoId}/cancel", controllers.CargoCancel(svcs.Cargo, logg))

			r.With(freight).Post("/{cargoId}/announce", controllers.CargoAnnounce(svcs.Announcements, logg))
			r.With(driver).Post("/{cargoId}/request", controllers.CargoRequest(svcs.Appointments, logg))
			r.With(freight).Get("/{cargoId}/requests", controllers.CargoRankedRequests(svcs.Appointments, logg))
		})

		r.Route("/v1/announcements", func(r chi.Router) {
			freight := middleware.RequireRole(string(enums.UserRoleFreightCompany), logg)

			r.With(freight).Get("/mine", controllers.AnnouncementListMine(svcs.Announcements, logg))
			r.Get("/hall/{hallId}", controllers.HallBoard(svcs.Announcements, logg))
			r.Get("/{announcementId}", controllers.AnnouncementDetail(svcs.Announcements, logg))
			r.With(freight).Post("/{announcementId}/suspend", controllers.AnnouncementSuspend(svcs.Announcements, logg))
			r.With(freight).Post("/{announcementId}/resume", controllers.AnnouncementResume(svcs.Announcements, logg))
		})

		r.Route("/v1/appointments", func(r chi.Router) {
			freight := middleware.RequireRole(string(enums.UserRoleFreightCompany), logg)
			driver := middleware.RequireRole(string(enums.UserRoleDriver), logg)

			r.With(driver).Get("/mine", controllers.AppointmentListMine(svcs.Appointments, logg))
			r.With(freight).Get("/freight", controllers.AppointmentListForFreight(svcs.Appointments, logg))
			r.Get("/{appointmentId}", controllers.AppointmentDetail(svcs.Appointments, logg))
			r.With(freight).Post("/{appointmentId}/approve", controllers.AppointmentApprove(svcs.Appointments, logg))
			r.With(freight).Post("/{appointmentId}/reject", controllers.AppointmentReject(svcs.Appointments, logg))
			r.With(driver).Post("/{appointmentId}/cancel", controllers.AppointmentCancel(svcs.Appointments, logg))
			r.With(driver).Post("/{appointmentId}/status", controllers.AppointmentUpdateStatus(svcs.Appointments, logg))
			r.Get("/{appointmentId}/waybill", controllers.WaybillForAppointment(svcs.Waybills, logg))
		})

		r.Route("/v1/waybills", func(r chi.Router) {
			freight := middleware.RequireRole(string(enums.UserRoleFreightCompany), logg)

			r.With(freight).Post("/", controllers.WaybillIssue(svcs.Waybills, logg))
			r.With(freight).Get("/", controllers.WaybillListMine(svcs.Waybills, logg))
			r.Get("/{waybillId}", controllers.WaybillDetail(svcs.Waybills, logg))
		})

		r.Route("/v1/terminals", func(r chi.Router) {
			admin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

			r.With(admin).Post("/", controllers.TerminalCreate(svcs.Halls, logg))
			r.Get("/", controllers.TerminalList(svcs.Halls, logg))
			r.Get("/{terminalId}", controllers.TerminalDetail(svcs.Halls, logg))
		})

		r.Route("/v1/halls", func(r chi.Router) {
			admin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)

			r.With(admin).Post("/", controllers.HallCreate(svcs.Halls, logg))
			r.Get("/", controllers.HallList(svcs.Halls, logg))
			r.Get("/{hallId}", controllers.HallDetail(svcs.Halls, logg))
		})

		r.Route("/v1/drivers", func(r chi.Router) {
			admin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)
			driver := middleware.RequireRole(string(enums.UserRoleDriver), logg)
			staff := middleware.RequireAnyRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleFreightCompany))

			r.With(staff).Get("/", controllers.DriverList(svcs.Drivers, logg))
			r.With(driver).Get("/me", controllers.DriverProfileMe(svcs.Drivers, logg))
			r.Get("/{driverId}", controllers.DriverDetail(svcs.Drivers, logg))
			r.With(admin).Post("/{driverId}/lift-ban", controllers.DriverLiftBan(svcs.Drivers, logg))
			r.Get("/{driverId}/vehicles", controllers.VehicleList(svcs.Drivers, logg))
		})

		r.Route("/v1/vehicles", func(r chi.Router) {
			driver := middleware.RequireRole(string(enums.UserRoleDriver), logg)
			r.With(driver).Post("/", controllers.VehicleCreate(svcs.Drivers, logg))
		})

		r.Route("/v1/audit", func(r chi.Router) {
			admin := middleware.RequireRole(string(enums.UserRoleAdmin), logg)
			r.With(admin).Get("/", controllers.AuditList(svcs.Audit, logg))
		})
	})

	return r
}
