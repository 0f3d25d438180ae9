package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/qr-attendance-go/internal/config"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/qr-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/qr-attendance-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/qr-attendance-go/internal/service/auth"
	deviceService "github.com/cmlabs-hris/qr-attendance-go/internal/service/device"
	organizationService "github.com/cmlabs-hris/qr-attendance-go/internal/service/organization"
	qrcodeService "github.com/cmlabs-hris/qr-attendance-go/internal/service/qrcode"
	reportService "github.com/cmlabs-hris/qr-attendance-go/internal/service/report"
	timesheetService "github.com/cmlabs-hris/qr-attendance-go/internal/service/timesheet"
	"golang.org/x/sync/errgroup"
)

type repositories struct {
	tx           database.Transactor
	organization organization.OrganizationRepository
	user         user.UserRepository
	qrcode       qrcode.QRCodeRepository
	attendance   attendance.AttendanceRepository
	timesheet    timesheet.TimesheetRepository
	refreshToken auth.RefreshTokenRepository
	close        func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			tx:           memory.NewTransactor(store),
			organization: memory.NewOrganizationRepository(store),
			user:         memory.NewUserRepository(store),
			qrcode:       memory.NewQRCodeRepository(store),
			attendance:   memory.NewAttendanceRepository(store),
			timesheet:    memory.NewTimesheetRepository(store),
			refreshToken: memory.NewRefreshTokenRepository(store),
			close:        func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := postgresql.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &repositories{
		tx:           postgresql.NewTransactor(db),
		organization: postgresql.NewOrganizationRepository(db),
		user:         postgresql.NewUserRepository(db),
		qrcode:       postgresql.NewQRCodeRepository(db),
		attendance:   postgresql.NewAttendanceRepository(db),
		timesheet:    postgresql.NewTimesheetRepository(db),
		refreshToken: postgresql.NewJWTRepository(db),
		close:        db.Close,
	}, nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	if cfg.Attendance.SeedDemo {
		if _, err := fixtures.SeedDemo(ctx, repos.tx, repos.organization, repos.user); err != nil {
			return err
		}
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.JWT.SecureCookie)
	hub := sse.NewHub(cfg.Attendance.SSEBufferSize)

	deviceSvc := deviceService.NewDeviceService(repos.tx, repos.user, repos.organization)
	qrcodeSvc := qrcodeService.NewQRCodeService(repos.tx, repos.qrcode, repos.organization)
	timesheetSvc := timesheetService.NewTimesheetService(repos.timesheet)
	authSvc := serviceAuth.NewAuthService(repos.tx, repos.user, JWTService, repos.refreshToken, deviceSvc)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		keylock.New(),
		repos.attendance,
		repos.organization,
		repos.user,
		qrcodeSvc,
		deviceSvc,
		timesheetSvc,
		hub,
	)
	organizationSvc := organizationService.NewOrganizationService(repos.organization)
	reportSvc := reportService.NewReportService(repos.organization, repos.user, repos.timesheet)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc, JWTService, hub),
		QRCode:       appHTTP.NewQRCodeHandler(qrcodeSvc),
		Device:       appHTTP.NewDeviceHandler(deviceSvc),
		Organization: appHTTP.NewOrganizationHandler(organizationSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
	})

	scheduler := cron.NewScheduler(ctx)
	cron.NewRetentionJobs(repos.attendance, repos.timesheet, repos.qrcode, repos.refreshToken, cfg.Attendance.RetentionMonths).RegisterJobs(scheduler)

	g, gctx := errgroup.WithContext(ctx)

	// Open streams end when shutdown begins
	server := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.App.Port),
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Storage.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start()
		<-scheduler.Done()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		scheduler.Stop()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
