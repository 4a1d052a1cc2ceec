package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/flow/internal/cache"
	"github.com/benvon/flow/internal/handlers"
	"github.com/benvon/flow/internal/middleware"
	"github.com/benvon/flow/internal/telemetry"
	"github.com/benvon/flow/internal/tracker"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timer state over a local HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if listenAddr != "" {
					a.cfg.ListenAddr = listenAddr
				}
				return serve(ctx, a)
			})
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (overrides listen_addr)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := a.logger
	log.Info("starting_server",
		zap.Bool("debug_mode", a.debug),
		zap.String("listen_addr", a.cfg.ListenAddr),
		zap.String("api_url", a.cfg.APIURL),
		zap.Bool("otel_enabled", a.tp != nil),
	)

	tr, publisher, err := a.newTracker()
	if err != nil {
		return err
	}
	defer func() {
		tr.Close()
		if err := publisher.Close(); err != nil {
			log.Warn("failed_to_close_event_publisher", zap.Error(err))
		}
	}()

	go logTrackerErrors(tr.Errors(), log)

	// The server still starts when the backend is down; the resyncer retries.
	if err := tr.Load(ctx); err != nil {
		log.Warn("initial_timer_load_failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if rs, ok := a.store.(*cache.RedisStore); ok {
		redisClient = rs.Client()
	}
	limiterStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		return fmt.Errorf("failed to create rate limit store: %w", err)
	}
	rateLimitMW, err := middleware.RateLimit(limiterStore, a.cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order, outermost first
	if a.tp != nil {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(a.cfg.EnableHSTS))
	r.Use(middleware.CORS(a.cfg.AllowedOrigins))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))

	healthChecker := handlers.NewHealthChecker(a.client, a.store)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	handlers.NewTimerHandler(tr, log).RegisterRoutes(apiRouter)

	// CORS middleware has already answered preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           a.cfg.ListenAddr,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	resyncer := tracker.NewResyncer(tr, a.cfg.ResyncInterval, log)
	go func() {
		if err := resyncer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("timer_resyncer_stopped_with_error", zap.Error(err))
		}
	}()
	log.Info("started_timer_resyncer", zap.Duration("interval", a.cfg.ResyncInterval))

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server_starting", zap.String("addr", a.cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server_exited")
	return nil
}

// logTrackerErrors consumes error notifications until the tracker closes the channel.
// The tracker already logs the failure itself; this keeps the buffer from filling.
func logTrackerErrors(errs <-chan string, log *zap.Logger) {
	for msg := range errs {
		log.Debug("timer_error_notification", zap.String("message", msg))
	}
}
