package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-screener/internal/config"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/services"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx := context.Background()
	log := logger.NewLogger(ctx, cfg.LogLevel, cfg.LogJSON)

	if config.UltravoxAPIKey() == "" {
		log.Warn("ULTRAVOX_API_KEY is not set; call creation will be rejected upstream")
	}

	template, err := config.LoadCallTemplate(cfg.CallTemplatePath)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("Loaded call template %q", template.Title))

	app := newApp(cfg, log, template, services.ScreeningOptions{})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
		return err
	case <-stop:
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.screening.EndScreening(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Failed to end screening on shutdown: %v", err))
	}
	app.screening.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
		return err
	}
	log.Info("Server stopped gracefully.")
	return nil
}
