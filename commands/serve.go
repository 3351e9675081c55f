package commands

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/config"
	"github.com/tourwithmark/engagement/routes"
	"github.com/tourwithmark/engagement/store"
	"github.com/tourwithmark/engagement/utils"
)

// NewServeCmd creates the serve command.
func NewServeCmd(load func() (config.AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT/SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := utils.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	cache := utils.NewCache(cfg, logger)

	accessLog := logger
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, utils.Rotation{
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Compress:   cfg.LogCompress,
		}); err == nil {
			accessLog = gl
		} else {
			logger.Warn("gin access log unavailable, using app logger", zap.Error(err))
		}
	}

	var handler http.Handler = routes.SetupRouter(cfg, routes.Deps{
		Store:     st,
		Cache:     cache,
		Logger:    logger,
		AccessLog: accessLog,
	})

	var shutdownTracing func(context.Context) error
	if cfg.TracingEnabled {
		shutdownTracing, err = utils.InitTracing(ctx, cfg.ServiceName)
		if err != nil {
			_ = st.Close()
			return fmt.Errorf("init tracing: %w", err)
		}
		handler = otelhttp.NewHandler(handler, cfg.ServiceName)
	}

	srv := utils.NewServer(":"+cfg.AppPort, handler, logger, cfg.ShutdownTimeout())
	// hooks run after in-flight requests drain; the store closes last
	if shutdownTracing != nil {
		srv.OnShutdown(shutdownTracing)
	}
	srv.OnShutdown(func(context.Context) error { return cache.Close() })
	srv.OnShutdown(func(context.Context) error {
		logger.Info("closing database")
		return st.Close()
	})

	logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("driver", cfg.DBDriver),
		zap.Bool("cache", cache != nil),
	)
	if err := srv.ListenAndServe(); err != nil {
		// hooks do not run when binding the listener failed
		_ = st.Close()
		_ = cache.Close()
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
