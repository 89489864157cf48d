package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/postlog-dashboard/pkg/config"
	"github.com/denysvitali/postlog-dashboard/pkg/server"
	"github.com/denysvitali/postlog-dashboard/pkg/telemetry"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dashboard server",
	Long: `Start the dashboard HTTP server. It handles the OAuth callback, proxies
account and repository listings from the Postlog backend and hosts the file
browsing sessions used to pick the files of a collection.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().IntP("port", "p", 3000, "Port to listen on")
	serverCmd.Flags().String("backend-url", "", "Base URL of the Postlog backend")
	serverCmd.Flags().String("login-url", "", "OAuth entry point (defaults to the backend URL)")
	serverCmd.Flags().String("session-secret", "", "Secret used to sign session cookies")
	serverCmd.Flags().Duration("session-ttl", 24*time.Hour, "Lifetime of a session cookie")
	serverCmd.Flags().Bool("secure-cookies", false, "Only send the session cookie over HTTPS")
	serverCmd.Flags().Duration("browse-idle-timeout", 30*time.Minute, "Close browse sessions idle for longer than this")
	serverCmd.Flags().String("allowed-origin", "", "Origin allowed to send credentialed CORS requests")
	serverCmd.Flags().Bool("enable-telemetry", false, "Enable OpenTelemetry tracing")
	serverCmd.Flags().String("otel-endpoint", "", "OpenTelemetry endpoint (if empty, uses auto-export)")
	serverCmd.Flags().Bool("enable-metrics", true, "Expose Prometheus metrics")

	_ = viper.BindPFlag("server.port", serverCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("backend.base_url", serverCmd.Flags().Lookup("backend-url"))
	_ = viper.BindPFlag("backend.login_url", serverCmd.Flags().Lookup("login-url"))
	_ = viper.BindPFlag("server.session_secret", serverCmd.Flags().Lookup("session-secret"))
	_ = viper.BindPFlag("server.session_ttl", serverCmd.Flags().Lookup("session-ttl"))
	_ = viper.BindPFlag("server.secure_cookies", serverCmd.Flags().Lookup("secure-cookies"))
	_ = viper.BindPFlag("server.browse_idle_timeout", serverCmd.Flags().Lookup("browse-idle-timeout"))
	_ = viper.BindPFlag("server.allowed_origin", serverCmd.Flags().Lookup("allowed-origin"))
	_ = viper.BindPFlag("telemetry.enabled", serverCmd.Flags().Lookup("enable-telemetry"))
	_ = viper.BindPFlag("telemetry.endpoint", serverCmd.Flags().Lookup("otel-endpoint"))
	_ = viper.BindPFlag("metrics.enabled", serverCmd.Flags().Lookup("enable-metrics"))
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := GetLogger()
	logger.Infof("Starting Postlog dashboard %s", Version)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Telemetry.Enabled {
		logger.Info("Initializing OpenTelemetry")
		cleanup, err := telemetry.Initialize(cfg.Telemetry, Version, logger)
		if err != nil {
			logger.Warnf("Failed to initialize telemetry: %v", err)
		} else {
			defer cleanup()
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-interrupt:
		logger.Infof("Received signal %v, shutting down...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Errorf("Server shutdown error: %v", err)
			return err
		}

		logger.Info("Server stopped gracefully")
		return nil
	}
}
