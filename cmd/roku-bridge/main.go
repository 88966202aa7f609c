package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/farouk15160/roku-voice-bridge/internal/bridge"
	"github.com/farouk15160/roku-voice-bridge/internal/circuitbreaker"
	"github.com/farouk15160/roku-voice-bridge/internal/config"
	myMqtt "github.com/farouk15160/roku-voice-bridge/internal/mqtt"
	"github.com/farouk15160/roku-voice-bridge/internal/queue"
	"github.com/farouk15160/roku-voice-bridge/internal/server"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exit.
func run() int {
	fs := pflag.NewFlagSet("roku-bridge", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	// 1) Optional .env, then config file, environment and flags
	if envFile, _ := fs.GetString(config.FlagEnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", envFile, err)
		}
	}
	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		return 1
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("Starting "+config.AppName,
		zap.String("broker_kind", cfg.Broker.Kind),
		zap.String("broker_url", cfg.Broker.URL),
		zap.Int("http_port", cfg.HTTP.Port))

	// 2) Connect to the broker
	broker, healthy, closeBroker, err := connectBroker(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to broker", zap.Error(err))
		return 1
	}
	defer closeBroker()

	if cfg.CircuitBreaker.Enabled {
		broker = circuitbreaker.NewGuardedBroker(broker, circuitbreaker.Settings{
			Name:             "broker",
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
		}, logger.Named("breaker"))
	}

	// 3) Wire the dispatcher and serve it
	dispatcher := bridge.NewDispatcher(bridge.NewCommandClient(broker, logger), logger)
	srv := server.New(config.AppName, cfg.HTTP.Path, dispatcher, healthy, logger)

	// 4) Serve until CTRL+C, a kill signal or a listener failure
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, srv, fmt.Sprintf(":%d", cfg.HTTP.Port), cfg.HTTP.ShutdownTimeout, logger); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
		return 1
	}
	return 0
}

// serve runs srv on addr until ctx is cancelled or the listener fails, then
// shuts it down within timeout. A listener failure is returned.
func serve(ctx context.Context, srv *server.Server, addr string, timeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	return serveErr
}

// connectBroker builds the configured transport. It returns the broker, a
// health probe and a close function.
func connectBroker(cfg *config.Config, logger *zap.Logger) (bridge.Broker, server.HealthFunc, func(), error) {
	switch cfg.Broker.Kind {
	case config.BrokerNATS:
		nq, err := queue.NewNATSBroker(cfg.Broker.URL, cfg.Broker.PublishTimeout, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return nq, nil, func() { _ = nq.Close() }, nil
	default:
		mqttClient := myMqtt.NewClient(myMqtt.Options{
			BrokerURL:      cfg.Broker.URL,
			ClientID:       cfg.Broker.ClientID,
			CAFile:         cfg.Broker.TLS.CAFile,
			CertFile:       cfg.Broker.TLS.CertFile,
			KeyFile:        cfg.Broker.TLS.KeyFile,
			PublishTimeout: cfg.Broker.PublishTimeout,
			ConnectTimeout: cfg.Broker.ConnectTimeout,
			StatusTopic:    cfg.Broker.StatusTopic,
			Debug:          cfg.Logging.Debug,
		}, logger)
		if err := mqttClient.Connect(); err != nil {
			return nil, nil, nil, err
		}
		return mqttClient, mqttClient.IsConnected, mqttClient.Disconnect, nil
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" && !cfg.Debug {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}
