package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"mapview/internal/layers"
	layersmetrics "mapview/internal/layers/metrics"
	"mapview/internal/layers/renderer"
	"mapview/internal/layers/service"
	"mapview/internal/layers/store/session"
	"mapview/internal/platform/config"
	"mapview/internal/platform/httpserver"
	"mapview/internal/platform/logger"
	"mapview/internal/platform/metrics"
	"mapview/internal/platform/middleware"
	"mapview/internal/platform/redis"
	"mapview/pkg/platform/httputil"
	"mapview/pkg/platform/middleware/requesttime"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	catalog, err := layers.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	log.Info("layer catalog loaded",
		"layers", catalog.Len(),
		"multi_field_layer", catalog.MultiFieldLayer(),
		"path", cfg.CatalogPath,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	layerMetrics := layersmetrics.New(reg)
	httpMetrics := metrics.New(reg)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var sink renderer.Renderer = renderer.NewLogRenderer(log)
	if redisClient != nil {
		defer redisClient.Close()
		sink = renderer.NewRedisRenderer(redisClient)
		log.Info("publishing renderer notifications to redis", "channel_prefix", renderer.ChannelPrefix)
	}

	svc, err := layers.NewService(catalog, session.NewInMemoryStore(),
		service.WithLogger(log),
		service.WithMetrics(layerMetrics),
		service.WithRenderer(sink),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(middleware.AccessLog(log, httpMetrics))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				status["status"], status["redis"] = "degraded", err.Error()
				httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["redis"] = "ok"
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	})
	layers.NewHandler(svc, log).Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting mapview", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := svc.RunJanitor(gctx, cfg.SweepInterval, cfg.SessionIdleTTL)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
