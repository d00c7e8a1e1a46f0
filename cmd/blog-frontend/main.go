package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/upsc-blog/internal/config"
	gwhttp "github.com/pribylovaa/upsc-blog/internal/http"
	"github.com/pribylovaa/upsc-blog/internal/http/handlers"
	"github.com/pribylovaa/upsc-blog/internal/http/middleware"
	"github.com/pribylovaa/upsc-blog/internal/http/view"
	"github.com/pribylovaa/upsc-blog/internal/service"
	"github.com/pribylovaa/upsc-blog/internal/wordpress"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting blog-frontend", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	wp, err := wordpress.New(wordpress.Options{
		BaseURL:        cfg.WordPress.BaseURL,
		Timeout:        cfg.WordPress.Timeout,
		DefaultPerPage: cfg.Blog.PostsPerPage,
		PerPageMax:     cfg.WordPress.PerPageMax,
		UserAgent:      cfg.WordPress.UserAgent,
		RateLimit:      cfg.WordPress.RateLimit,
		Burst:          cfg.WordPress.Burst,
		Registerer:     reg,
	})
	if err != nil {
		log.Error("wordpress_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("wordpress_client_initialized", slog.String("base_url", cfg.WordPress.BaseURL))

	renderer, err := view.New()
	if err != nil {
		log.Error("templates_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(reg)
	if err != nil {
		log.Error("metrics_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	svc := service.New(wp, cfg.Blog.PostsPerPage)
	h := handlers.New(svc, renderer, handlers.Options{
		SiteTitle: cfg.Blog.Title,
		SiteURL:   cfg.Blog.SiteURL,
	})

	siteHandler := gwhttp.NewRouter(h, gwhttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Metrics: httpMetrics,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.Handle("/", siteHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("blog_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	log.Info("service_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
