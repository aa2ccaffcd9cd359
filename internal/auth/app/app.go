package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/hostcodes/quizwiz/internal/auth/http"
	"github.com/hostcodes/quizwiz/internal/auth/mail"
	"github.com/hostcodes/quizwiz/internal/auth/service"
	"github.com/hostcodes/quizwiz/internal/auth/store"
	"github.com/hostcodes/quizwiz/internal/auth/store/drivers/sqlite"
	"github.com/hostcodes/quizwiz/pkg/cryptox"
	"github.com/hostcodes/quizwiz/pkg/jwtx"
	"github.com/hostcodes/quizwiz/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	mailer   mail.Mailer
	sessions *jwtx.HS256Signer
	resets   *jwtx.HS256Signer

	// Services
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "quizwiz-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initSecrets(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			// The server is already dead; still stop housekeeping and close
			// the store before reporting the failure.
			if cleanupErr := app.Shutdown(); cleanupErr != nil {
				app.logger.Error("cleanup after server failure", "error", cleanupErr)
			}
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initSecrets resolves the two token secrets. Outside dev both must be set;
// in dev a missing secret gets a random per-process value, which keeps local
// runs working but invalidates tokens on restart.
func (app *Application) initSecrets() error {
	if app.cfg.JWTSecret == "" {
		if app.cfg.Env != "dev" {
			return errors.New("AUTH_JWT_SECRET must be set outside dev")
		}
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("generate dev session secret: %w", err)
		}
		app.cfg.JWTSecret = secret
		app.logger.Warn("AUTH_JWT_SECRET not set, using a random per-process secret")
	}

	if app.cfg.ResetSecret == "" {
		if app.cfg.Env != "dev" {
			return errors.New("AUTH_RESET_SECRET must be set outside dev")
		}
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("generate dev reset secret: %w", err)
		}
		app.cfg.ResetSecret = secret
		app.logger.Warn("AUTH_RESET_SECRET not set, using a random per-process secret")
	}

	if app.cfg.JWTSecret == app.cfg.ResetSecret {
		return errors.New("AUTH_JWT_SECRET and AUTH_RESET_SECRET must differ")
	}

	app.sessions = jwtx.NewHS256([]byte(app.cfg.JWTSecret), app.cfg.Issuer)
	app.resets = jwtx.NewHS256([]byte(app.cfg.ResetSecret), app.cfg.Issuer)
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initMailer picks the SMTP relay when configured, otherwise the log-only
// mailer so dev runs never need credentials.
func (app *Application) initMailer() {
	if app.cfg.SMTPHost == "" {
		app.mailer = mail.LogMailer{}
		app.logger.Warn("SMTP_HOST not set, emails will be logged instead of sent")
		return
	}

	app.mailer = mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	app.logger.Info("smtp mailer configured", "host", app.cfg.SMTPHost, "port", app.cfg.SMTPPort)
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.accountService = service.NewAccountService(
		app.db,
		app.mailer,
		app.sessions,
		app.resets,
		app.cfg.FrontendURL,
	)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
