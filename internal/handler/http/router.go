package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

type Handlers struct {
	Auth         AuthHandler
	Attendance   AttendanceHandler
	QRCode       QRCodeHandler
	Device       DeviceHandler
	Organization OrganizationHandler
	Report       ReportHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", HeaderDeviceID},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Requires authentication
	authenticated := func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService))
		r.Use(middleware.RequireOrganization)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		r.Route("/attendance", func(r chi.Router) {
			// EventSource clients authenticate with a query token
			r.Get("/stream", h.Attendance.Stream)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.With(middleware.RequirePermission(user.PermissionAttendanceScan)).Post("/scan", h.Attendance.Scan)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/past", h.Attendance.Past)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/status", h.Attendance.Status)

				// Admin only
				r.With(middleware.AdminOnly).Post("/stream-token", h.Attendance.GetStreamToken)
			})
		})

		r.Group(func(r chi.Router) {
			authenticated(r)

			r.Route("/qrcodes", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionQRCodeManage))
				r.Post("/", h.QRCode.Issue)
				r.Get("/active", h.QRCode.GetActive)
			})

			r.Route("/devices/change-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionDeviceRequest)).Post("/", h.Device.SubmitChangeRequest)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionDeviceApprove))
					r.Get("/", h.Device.ListPending)
					r.Post("/resolve", h.Device.ResolveChangeRequest)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/daily", h.Report.Daily)
				r.Get("/weekly", h.Report.Weekly)
			})

			r.Route("/organizations/my", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionOrganizationView)).Get("/", h.Organization.GetMy)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionOrganizationManage))
					r.Put("/location", h.Organization.UpdateLocation)
					r.Put("/settings", h.Organization.UpdateSettings)
				})
			})
		})
	})
	return r
}
