package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/bin-packing/internal/application"
	"github.com/eugenenazirov/bin-packing/internal/config"
	"github.com/eugenenazirov/bin-packing/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("binpack-server", "Bin packing service - exact and first-fit solvers over HTTP")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()
	exactMaxItemsFlag := kingpinApp.Flag("exact-max-items", "Largest instance the exact solver accepts (0 for no limit)").Default("-1").Int()
	solveTimeoutFlag := kingpinApp.Flag("solve-timeout", "Upper bound on a single solve request").Duration()
	logLevelFlag := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	cfg, err := config.Load(buildOverrides(*configFile, *port, *rateLimitRPSFlag, *rateLimitBurstFlag, *exactMaxItemsFlag, *solveTimeoutFlag, *logLevelFlag))
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// buildOverrides turns raw flag values into overrides; negative numbers and zero values mean "not set".
func buildOverrides(configFile, port string, rps float64, burst, exactMaxItems int, solveTimeout time.Duration, logLevel string) *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile: configFile,
	}
	if port != "" {
		overrides.Port = &port
	}
	if rps >= 0 {
		overrides.RateLimitRPS = &rps
	}
	if burst >= 0 {
		overrides.RateLimitBurst = &burst
	}
	if exactMaxItems >= 0 {
		overrides.ExactMaxItems = &exactMaxItems
	}
	if solveTimeout > 0 {
		overrides.SolveTimeout = &solveTimeout
	}
	if logLevel != "" {
		overrides.LogLevel = &logLevel
	}
	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
