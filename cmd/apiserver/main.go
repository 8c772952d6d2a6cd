// Command apiserver serves the Carat Compare site, its JSON API, health
// probes and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/CaratCompare/internal/bootstrap"
	"github.com/turtacn/CaratCompare/internal/config"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/CaratCompare/internal/interfaces/http"
	"github.com/turtacn/CaratCompare/internal/interfaces/http/middleware"
)

// Build-time variables injected via ldflags.
var version = "dev"

const limiterIdle = 10 * time.Minute

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if *configPath != "" {
		config.Watch(*configPath, func(next *config.Config) {
			if logging.SetLevel(logger, next.Log.Level) {
				logger.Info("Log level changed", logging.String("level", next.Log.Level))
			}
		}, func(err error) {
			logger.Warn("Ignoring invalid configuration change", logging.Err(err))
		})
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		logger.Fatal("Failed to listen", logging.Int("port", cfg.Server.Port), logging.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, ln); err != nil {
		logger.Error("API server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves on ln until ctx is done, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, logger logging.Logger, ln net.Listener) error {
	gin.SetMode(cfg.Server.Mode)

	infra, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	infra.Connect()
	defer infra.Close()

	router, limiter := infra.Router(version)
	srv := httpserver.NewServer(cfg.Server, router, logger.Named("server"))

	logger.Info("Starting Carat Compare API server",
		logging.String("version", version),
		logging.String("addr", ln.Addr().String()),
		logging.Bool("page_cache", infra.Cache != nil),
		logging.Bool("metrics", infra.Collector != nil))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ln) })
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop(context.Background())
	})
	if limiter != nil {
		g.Go(func() error {
			sweepLimiter(gctx, limiter, logger)
			return nil
		})
	}
	return g.Wait()
}

// sweepLimiter drops idle rate limit entries until ctx is done.
func sweepLimiter(ctx context.Context, l *middleware.KeyedLimiter, logger logging.Logger) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(limiterIdle); n > 0 {
				logger.Debug("Rate limiter swept", logging.Int("removed", n))
			}
		}
	}
}
