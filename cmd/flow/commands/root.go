// Package commands implements the flow command line.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/flow/internal/cache"
	"github.com/benvon/flow/internal/config"
	"github.com/benvon/flow/internal/events"
	"github.com/benvon/flow/internal/flowapi"
	"github.com/benvon/flow/internal/graphql"
	"github.com/benvon/flow/internal/logger"
	"github.com/benvon/flow/internal/telemetry"
	"github.com/benvon/flow/internal/tracker"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	debug      bool
	jsonLogs   bool
}

// NewRootCmd creates the flow root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "flow",
		Short:         "Time tracking client for the flow backend",
		Long:          "Track time records and tasks against a flow GraphQL backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/flow/flow.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging of GraphQL traffic")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonLogs, "json-logs", false, "Write structured JSON logs")

	rootCmd.AddCommand(newRecordsCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newTasksCmd(opts))
	rootCmd.AddCommand(newAuthCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

// app carries the wired dependencies shared by all subcommands
type app struct {
	cfg     *config.Config
	debug   bool
	logger  *zap.Logger
	tp      *sdktrace.TracerProvider
	client  *graphql.Client
	store   cache.Store
	records *flowapi.TimeRecordRepository
	tasks   *flowapi.TaskRepository
	auth    *flowapi.AuthRepository
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	debug := cfg.Debug || opts.debug
	var log *zap.Logger
	if opts.jsonLogs {
		log, err = logger.NewProductionLogger(debug)
	} else {
		log, err = logger.NewCLILogger(debug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, debug: debug, logger: log}

	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			log.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(ctx, telemetry.ServiceName, cfg.OTELEndpoint); err != nil {
			log.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			a.tp = tp
			log.Debug("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	a.client = graphql.NewClient(cfg.APIURL,
		graphql.WithToken(cfg.Token),
		graphql.WithTimeout(cfg.HTTPTimeout),
		graphql.WithLogger(log),
		graphql.WithDebug(debug),
		graphql.WithTracer(telemetry.Tracer()),
	)

	policy, err := cache.ParseFetchPolicy(cfg.FetchPolicy)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.store = redisStore
	} else {
		a.store = cache.NewMemoryStore(cache.DefaultMaxBytes)
	}
	exec := cache.NewExecutor(a.client, a.store, policy, cfg.CacheTTL, log, cache.WithSessionToken(cfg.Token))

	a.records = flowapi.NewTimeRecordRepository(exec, time.Local)
	a.tasks = flowapi.NewTaskRepository(exec, time.Local)
	a.auth = flowapi.NewAuthRepository(exec)

	log.Debug("flow_initialized",
		zap.String("api_url", cfg.APIURL),
		zap.String("fetch_policy", string(policy)),
		zap.Bool("redis_cache", cfg.RedisURL != ""),
		zap.Bool("authenticated", cfg.Token != ""),
	)
	return a, nil
}

// newTracker builds a tracker over the time record repository. Timer
// transitions are published to RabbitMQ when a broker is configured.
func (a *app) newTracker() (*tracker.Tracker, events.Publisher, error) {
	var publisher events.Publisher = events.NoopPublisher{}
	if a.cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(a.cfg.RabbitMQURL, a.cfg.EventsExchange)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		a.logger.Debug("connected_to_rabbitmq", zap.String("exchange", a.cfg.EventsExchange))
		publisher = p
	}

	tr := tracker.New(a.records, a.logger,
		tracker.WithTickInterval(a.cfg.TickInterval),
		tracker.WithLocation(time.Local),
		tracker.WithPublisher(publisher),
	)
	return tr, publisher, nil
}

// Close releases everything newApp acquired
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed_to_close_cache", zap.Error(err))
		}
	}
	if a.tp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx, a.tp); err != nil {
			a.logger.Warn("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}
	_ = logger.Sync(a.logger)
}

// withApp wires the app for the duration of fn
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// withTracker additionally loads a tracker for fn
func withTracker(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app, tr *tracker.Tracker) error) error {
	return withApp(cmd, opts, func(ctx context.Context, a *app) error {
		tr, publisher, err := a.newTracker()
		if err != nil {
			return err
		}
		defer func() {
			tr.Close()
			if err := publisher.Close(); err != nil {
				a.logger.Warn("failed_to_close_event_publisher", zap.Error(err))
			}
		}()
		if err := tr.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, a, tr)
	})
}
