package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/verse-service/internal/adapters/clients"
	"github.com/jsamuelsen/verse-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/verse-service/internal/adapters/http"
	"github.com/jsamuelsen/verse-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/platform/telemetry"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the viewer, the admin console and the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	rt, err := openRuntime(ctx, opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, logger := rt.cfg, rt.logger
	ctx = rt.context(ctx)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if shutdownErr := telProvider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(rt.store); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	images := cfg.Services.Images

	imageClient, err := clients.New(&clients.Config{
		BaseURL:     images.BaseURL,
		ServiceName: images.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		NoRedirects: true,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating image client: %w", err)
	}

	imageSource := acl.NewPicsumSource(acl.PicsumConfig{
		Client: imageClient,
		Width:  images.Width,
		Height: images.Height,
	})
	if err := healthRegistry.Register(ports.Optional(imageSource)); err != nil {
		return fmt.Errorf("registering image health check: %w", err)
	}

	backdrop := app.NewBackdrop(imageSource, cfg.Viewer.BackdropTimeout)
	defer backdrop.Close()

	viewer := app.NewViewer(rt.repo, app.WithBackdrop(backdrop))
	adminOpts := handlers.AdminOptions{
		SecureCookie:  cfg.Admin.SecureCookie,
		MaxImportSize: cfg.Admin.MaxImportSize,
	}

	routerCfg := http.RouterConfig{
		Logger:        logger,
		HealthHandler: handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		ViewerHandler: handlers.NewViewerHandler(viewer, fmt.Sprintf("%s/%d/%d", images.BaseURL, images.Width, images.Height)),
		AdminHandler:  handlers.NewAdminHandler(rt.admin, adminOpts),
		AdminPages:    handlers.NewAdminPages(rt.admin, adminOpts),
		Timeout:       http.DefaultRequestTimeout,
	}
	if cfg.Telemetry.Enabled {
		routerCfg.ServiceName = cfg.Telemetry.ServiceName
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	// Warm the first background so the first page view has one.
	backdrop.Refresh(ctx)

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := <-serverErr; err != nil {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("initiating graceful shutdown", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		reloadOnHangup(gctx, rt.repo, logger)

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// reloadOnHangup re-reads the collection on SIGHUP, picking up changes made
// by another process sharing the store (the CLI against a sqlite file).
func reloadOnHangup(ctx context.Context, repo *app.Repository, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := repo.Reload(ctx); err != nil {
				logger.Error("reloading collection", slog.Any("error", err))

				continue
			}

			logger.Info("collection reloaded")
		}
	}
}
