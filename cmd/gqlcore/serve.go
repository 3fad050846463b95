package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/hanpama/gqlcore/internal/config"
	engine "github.com/hanpama/gqlcore/internal/engine"
	eventbus "github.com/hanpama/gqlcore/internal/eventbus"
	grpctp "github.com/hanpama/gqlcore/internal/grpctp"
	logging "github.com/hanpama/gqlcore/internal/logging"
	metrics "github.com/hanpama/gqlcore/internal/metrics"
	otel "github.com/hanpama/gqlcore/internal/otel"
	schema "github.com/hanpama/gqlcore/internal/schema"
	server "github.com/hanpama/gqlcore/internal/server"
	starwars "github.com/hanpama/gqlcore/internal/starwars"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	configPath      string
	addr            string
	timeout         time.Duration
	pretty          bool
	metadataHeaders []string
	corsOrigins     []string
	strategy        string
	introspection   bool
	logLevel        string
	slowField       time.Duration
	otelEndpoint    string
	otelService     string
	metrics         bool
	fleetEndpoints  []string
}

func newServeCmd() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP GraphQL server with the Star Wars example schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, f.slowField)
		},
	}
	f.bind(cmd)
	return cmd
}

func (f *serveFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&f.addr, "server.addr", "", "HTTP listen address (default :8080)")
	fs.DurationVar(&f.timeout, "server.timeout", 0, "Per-request timeout, e.g. 10s")
	fs.BoolVar(&f.pretty, "server.pretty", false, "Pretty-print JSON responses")
	fs.StringSliceVar(&f.metadataHeaders, "server.metadata-header", nil, "Forward HTTP header to gRPC metadata. Repeatable")
	fs.StringSliceVar(&f.corsOrigins, "server.cors-origin", nil, "Allowed CORS origin. Repeatable")
	fs.StringVar(&f.strategy, "graphql.strategy", "", "Execution strategy: serial or parallel")
	fs.BoolVar(&f.introspection, "graphql.introspection", true, "Enable GraphQL introspection")
	fs.StringVar(&f.logLevel, "log.level", "", "Log level (debug, info, warn, error)")
	fs.DurationVar(&f.slowField, "log.slow-field", 0, "Log field resolutions slower than this; 0 disables")
	fs.StringVar(&f.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	fs.StringVar(&f.otelService, "otel.service", "", "OpenTelemetry service name")
	fs.BoolVar(&f.metrics, "metrics.enabled", true, "Expose Prometheus metrics")
	fs.StringSliceVar(&f.fleetEndpoints, "fleet.endpoint", nil, "Resolve starships through the fleet gRPC service at host:port. Repeatable")
}

// load reads the config file, if any, and applies flags the user set.
func (f *serveFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return config.Config{}, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("server.addr") {
		cfg.Server.Addr = f.addr
	}
	if changed("server.timeout") {
		cfg.Server.Timeout = f.timeout
	}
	if changed("server.pretty") {
		cfg.Server.Pretty = f.pretty
	}
	if changed("server.metadata-header") {
		cfg.Server.MetadataHeaders = f.metadataHeaders
	}
	if changed("server.cors-origin") {
		cfg.Server.CORSOrigins = f.corsOrigins
	}
	if changed("graphql.strategy") {
		cfg.GraphQL.Strategy = f.strategy
	}
	if changed("graphql.introspection") {
		cfg.GraphQL.Introspection = f.introspection
	}
	if changed("log.level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("otel.endpoint") {
		cfg.Otel.Endpoint = f.otelEndpoint
	}
	if changed("otel.service") {
		cfg.Otel.Service = f.otelService
	}
	if changed("metrics.enabled") {
		cfg.Metrics.Enabled = f.metrics
	}
	if changed("fleet.endpoint") {
		cfg.Fleet.Endpoints = f.fleetEndpoints
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, slowField time.Duration) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eventbus.Use(eventbus.New())
	tracer, shutdownTracing, err := otel.Setup(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	handler, cleanup, err := newHandler(cfg, logger, tracer, slowField)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: handler}
	errc := make(chan error, 1)
	go func() {
		logger.Info("GraphQL server listening", zap.String("addr", cfg.Server.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// newHandler wires the example schema, engine and HTTP handler together.
// Metrics subscribe to the global event bus. cleanup releases backend
// connections.
func newHandler(cfg config.Config, logger *zap.Logger, tracer *otel.Tracer, slowField time.Duration) (h http.Handler, cleanup func(), err error) {
	strategy, err := parseStrategy(cfg.GraphQL.Strategy)
	if err != nil {
		return nil, nil, err
	}

	middleware := []schema.Middleware{logging.FieldLogging(logger, slowField)}
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(true)
		m.Subscribe()
		middleware = append(middleware, m.Middleware())
	}
	if tracer != nil && cfg.Otel.FieldSpans {
		middleware = append(middleware, tracer.FieldTracing())
	}

	store := starwars.NewStore()
	var fleet starwars.Fleet = store
	cleanup = func() {}
	if eps := cfg.Fleet.Endpoints; len(eps) > 0 {
		tp := grpctp.New(
			grpctp.WithEndpoints(map[string][]string{starwars.FleetService: eps}),
			grpctp.WithRPCTimeout(cfg.Fleet.RPCTimeout),
			grpctp.WithMaxConnsPerEndpoint(cfg.Fleet.MaxConnsPerBackend),
		)
		cleanup = func() { _ = tp.Close() }
		fleet = starwars.NewFleetClient(tp)
		logger.Info("resolving starships through fleet service", zap.Strings("endpoints", eps))
	}

	sch, err := starwars.NewSchemaWithFleet(store, fleet, strategy, middleware...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build schema: %w", err)
	}
	eng := engine.New(sch,
		engine.WithLogger(logger),
		engine.WithStrategy(strategy),
		engine.WithIntrospection(cfg.GraphQL.Introspection),
	)

	opts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithGraphiQL(cfg.Server.GraphiQL),
		server.WithLogger(logger),
	}
	if cfg.Server.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	if len(cfg.Server.MetadataHeaders) > 0 {
		opts = append(opts, server.WithMetadataHeaders(cfg.Server.MetadataHeaders...))
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", server.New(eng, opts...))
	if m != nil {
		mux.Handle(cfg.Metrics.Path, m.Handler())
	}
	return mux, cleanup, nil
}
