package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-user-certification/config"
	"github.com/oksasatya/go-ddd-user-certification/internal/container"
	pginfra "github.com/oksasatya/go-ddd-user-certification/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-certification/internal/router"
	"github.com/oksasatya/go-ddd-user-certification/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "user-certification",
		Short:         "User registration and email certification API",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			return serve(cmd.Context(), cfg, helpers.NewLogger(cfg.AppName, cfg.Env))
		},
	}
	root.AddCommand(migrateCmd())
	return root
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the embedded PostgreSQL migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(*cobra.Command, []string) error {
			cfg := config.Load()
			return pginfra.MigrateUp(cfg.PostgresDSN(), helpers.NewLogger(cfg.AppName, cfg.Env))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(*cobra.Command, []string) error {
			cfg := config.Load()
			return pginfra.MigrateDown(cfg.PostgresDSN(), helpers.NewLogger(cfg.AppName, cfg.Env))
		},
	})
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	gin.SetMode(cfg.GinMode)
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer c.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(c),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited properly")
	return nil
}
