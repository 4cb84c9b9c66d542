package main

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

	"golang.org/x/sync/errgroup"

	specpkg "github.com/wastelink/wastelink/api"
	"github.com/wastelink/wastelink/internal/api"
	"github.com/wastelink/wastelink/internal/auth"
	"github.com/wastelink/wastelink/internal/config"
	"github.com/wastelink/wastelink/internal/database"
	"github.com/wastelink/wastelink/internal/domain"
	"github.com/wastelink/wastelink/internal/identity"
	"github.com/wastelink/wastelink/internal/navigation"
	"github.com/wastelink/wastelink/internal/profile"
	"github.com/wastelink/wastelink/internal/registration"
	"github.com/wastelink/wastelink/internal/session"
	"github.com/wastelink/wastelink/internal/shell"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	manifest, err := navigation.LoadManifest(cfg.NavigationManifestPath)
	if err != nil {
		return err
	}

	source := identity.NewBroadcaster()
	authService := auth.NewService(auth.NewRepository(db.Pool()), cfg.BcryptCost)
	profileService := profile.NewService(profile.NewRepository(db.Pool()))

	gate := session.NewGate(source, profileService,
		session.WithLookupTimeout(cfg.ProfileLookupTimeout),
		session.WithLogger(slog.Default().With("component", "session")),
	)
	defer gate.Dispose()

	composition := domain.NewComposition()
	root := shell.New(gate, manifest, composition)
	if err := root.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := root.Stop(context.Background()); err != nil {
			slog.Error("failed to unmount domain providers", "error", err)
		}
	}()

	registrar := registration.NewService(registration.NewPostgresUnitOfWork(db), authService, source)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:      db,
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.OpenAPISpec,
		Gate:          gate,
		Viewer:        root,
		Authenticator: authService,
		Publisher:     source,
		Registrar:     registrar,
		Manifest:      manifest,
		Composition:   composition,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting wastelink server",
			"addr", cfg.Addr(),
			"version", cfg.Version,
			"profileLookupTimeout", cfg.ProfileLookupTimeout.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
