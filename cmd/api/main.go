package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/melbourne-housing/price-api/internal/app"
	"github.com/melbourne-housing/price-api/internal/appconf"
	"github.com/melbourne-housing/price-api/internal/datasets"
	"github.com/melbourne-housing/price-api/internal/logging"
	"github.com/melbourne-housing/price-api/internal/restapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, datasetConfig, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stdout, cfg.LogLevel,
		slog.String("service", "housing-price-api"),
		slog.String("env", cfg.Env.String()))
	slog.SetDefault(logger)

	application, err := app.New(cfg, datasetConfig, logger)
	if err != nil {
		logging.LogError(logger, "failed to initialize application", err,
			slog.String("data_dir", datasetConfig.DataDir))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, application); err != nil {
		logging.LogError(logger, "server stopped with error", err)
		os.Exit(1)
	}
}

// parseFlags reads command-line flags into the application and dataset configs.
func parseFlags(args []string, output io.Writer) (appconf.Config, datasets.Config, error) {
	var (
		cfg      appconf.Config
		env      string
		logLevel string
	)
	datasetConfig := datasets.DefaultConfig()

	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.IntVar(&cfg.Port, "port", 8000, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 0, "Requests per second per client IP, 0 disables limiting")
	fs.StringVar(&datasetConfig.DataDir, "data-dir", datasetConfig.DataDir, "Directory holding the dataset files")
	fs.StringVar(&datasetConfig.PropertySalesFile, "property-sales", datasetConfig.PropertySalesFile, "Property sales file (.csv or .xlsx)")
	fs.StringVar(&datasetConfig.KaggleFile, "kaggle", datasetConfig.KaggleFile, "Kaggle dataset file (.csv or .xlsx)")
	fs.StringVar(&datasetConfig.OpenPortalFile, "open-portal", datasetConfig.OpenPortalFile, "Open portal file (.csv or .xlsx)")
	fs.StringVar(&datasetConfig.Placeholder, "placeholder", datasetConfig.Placeholder, "Missing-value placeholder in the property sales file")

	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, datasets.Config{}, err
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return appconf.Config{}, datasets.Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.RateLimit < 0 {
		return appconf.Config{}, datasets.Config{}, fmt.Errorf("invalid rate limit %d", cfg.RateLimit)
	}

	level, err := appconf.ParseLogLevel(logLevel)
	if err != nil {
		return appconf.Config{}, datasets.Config{}, err
	}

	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.LogLevel = level

	return cfg, datasetConfig, nil
}

// run serves the API until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, application *app.Application) error {
	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", application.Config.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(application.Logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		application.Logger.Info("starting server",
			slog.String("addr", srv.Addr),
			logging.Component(logging.ComponentServer))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	application.Logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	logging.LogOperation(application.Logger, "server_stopped",
		slog.Duration("uptime", time.Since(application.StartedAt)),
		logging.Component(logging.ComponentServer))

	return nil
}
