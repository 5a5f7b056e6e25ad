package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/cli"
	"github.com/alexanderramin/tempo/internal/config"
	"github.com/alexanderramin/tempo/internal/db"
	"github.com/alexanderramin/tempo/internal/live"
	"github.com/alexanderramin/tempo/internal/localstate"
	"github.com/alexanderramin/tempo/internal/repository"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := wire(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	return cli.Execute(ctx, app, os.Args[1:], os.Stdout, os.Stderr)
}

func wire(cfg config.Config, logger *slog.Logger) (*cli.App, func(), error) {
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	store, err := localstate.New(cfg.StateDir)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	session := auth.NewSession(store)
	if err := session.Restore(); err != nil {
		logger.Warn("discarding saved sign-in", "error", err)
	}

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	sessionRepo := repository.NewSQLiteSessionRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	hub := live.NewHub(logger)

	var observers []service.UseCaseObserver
	if cfg.LogCalls {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr, cfg.LogLevel))
	}

	password := auth.NewPasswordProvider(userRepo)
	var google auth.Provider
	if cfg.GoogleCredentials != "" {
		oauthCfg, err := auth.LoadGoogleConfig(cfg.GoogleCredentials)
		if err != nil {
			logger.Warn("google sign-in disabled", "error", err)
		} else {
			google = auth.NewGoogleProvider(oauthCfg, userRepo, cfg.OAuthPort, auth.WithAnnounce(func(url string) {
				fmt.Fprintf(os.Stderr, "Open this URL to sign in:\n\n  %s\n\n", url)
			}))
		}
	}

	timerOpts := []service.TimerOption{service.WithTickInterval(cfg.TickInterval)}
	if len(observers) > 0 {
		timerOpts = append(timerOpts, service.WithTimerObserver(observers[0]))
	}
	timer := service.NewTimerService(projectRepo, uow, session, store, hub, timerOpts...)

	app := &cli.App{
		Auth:     service.NewAuthService(password, google, session, userRepo, observers...),
		Projects: service.NewProjectService(projectRepo, sessionRepo, uow, session, hub, observers...),
		Sessions: service.NewSessionService(sessionRepo, uow, session, hub, observers...),
		Timer:    timer,
		Reports:  service.NewReportService(projectRepo, sessionRepo, session, cfg.Location, observers...),
		Hub:      hub,
		DBPath:   cfg.DBPath,
		Locale:   cfg.Locale,
		Location: cfg.Location,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
		ReadPassword: cli.TerminalPassword(os.Stderr),
	}

	cleanup := func() {
		timer.Close()
		database.Close()
	}
	return app, cleanup, nil
}
