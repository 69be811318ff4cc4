package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/appstack-io/appstack/app"
	"github.com/appstack-io/appstack/config"
	"github.com/appstack-io/appstack/middleware"
	"github.com/appstack-io/appstack/pkg/auth"
	"github.com/appstack-io/appstack/pkg/validation"
	"github.com/appstack-io/appstack/plugin/builtin"
	"github.com/appstack-io/appstack/router"
	"github.com/appstack-io/appstack/transport/echoadapter"
)

func newServerCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the application server",
		Long:  "Run the application server with plugin discovery and graceful shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")

	return cmd
}

func runServer(configPath string) error {
	cfg := &config.Config{}
	loader := config.NewSimpleLoader().WithYAMLFile(configPath)
	if err := loader.Load(cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := cfg.Logger.BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	adapter := echoadapter.New(e)

	providers := router.Providers{
		Validation:  middleware.NewValidationProvider(validation.NewValidator()),
		Cors:        middleware.NewCorsProvider(middleware.NewHeaderCors()),
		RateLimiter: middleware.NewRateLimiterProvider(middleware.NewMemoryStore()),
		Throttler:   middleware.NewThrottlerProvider(middleware.NewMemoryThrottler()),
	}
	if cfg.JWT.SecretKey != "" {
		jwtService := auth.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, cfg.JWT.Issuer)
		providers.Auth = middleware.NewAuthProvider(auth.NewJWTAuthenticator(jwtService))
	}

	application, err := app.New(
		app.WithLogger(logger),
		app.WithConfig(cfg),
		app.WithRouter(adapter, providers),
		app.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		app.WithServer(
			func() error {
				logger.Info("Server listening", zap.String("address", cfg.Server.Address))
				if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
					return err
				}
				return nil
			},
			func(ctx context.Context) error {
				return e.Shutdown(ctx)
			},
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := application.UsePlugin(builtin.Health(), nil); err != nil {
		return fmt.Errorf("failed to install health plugin: %w", err)
	}

	if dir := cfg.Plugins.Directory; dir != "" {
		if err := application.Plugins().LoadPluginsFromDirectory(dir); err != nil {
			return fmt.Errorf("failed to load plugins: %w", err)
		}
		if cfg.Plugins.Watch {
			watcher, err := application.Plugins().Watch(dir)
			if err != nil {
				return fmt.Errorf("failed to watch plugin directory: %w", err)
			}
			defer watcher.Close()
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return application.GracefulShutdown(ctx, syscall.SIGINT, syscall.SIGTERM)
	}
}
