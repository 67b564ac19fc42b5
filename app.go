package main

import (
	"context"
	"net"
	"net/http"

	"course_sales/api"
	"course_sales/internal/config"
	"course_sales/internal/database"
	"course_sales/internal/sales"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds the process logger from cfg.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// appOptions describes the serve dependency graph.
func appOptions(cfg config.Config, logger *zap.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg, logger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		fx.StopTimeout(cfg.Server.ShutdownTimeout),
		fx.Provide(
			newStorage,
			sales.NewService,
			newRouter,
			newHTTPServer,
		),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newStorage(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (sales.Storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Warn("using in-memory sales storage; data is lost on exit")
		return sales.NewLocalStorage(), nil
	}

	db, err := database.Open(cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	storage := sales.NewGormStorage(db, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.DB.AutoMigrate {
				return nil
			}
			return storage.Migrate(ctx)
		},
		OnStop: func(_ context.Context) error {
			return database.Close(db)
		},
	})

	return storage, nil
}

func newRouter(svc *sales.Service, logger *zap.Logger, cfg config.Config) *gin.Engine {
	return api.NewRouter(svc, logger, cfg.CORS)
}

func newHTTPServer(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen on %s", srv.Addr)
			}
			logger.Info("starting HTTP server", zap.String("address", ln.Addr().String()), zap.String("mode", gin.Mode()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})

	return srv
}

// serve runs the API until the process receives a stop signal.
func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	app := fx.New(appOptions(cfg, logger))

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start application")
	}

	sig := <-app.Wait()
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return errors.Wrap(err, "failed to stop application")
	}
	return nil
}

// migrate applies the sales schema to the configured database.
func migrate(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Info("memory driver selected; nothing to migrate")
		return nil
	}

	db, err := database.Open(cfg.DB, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	return sales.NewGormStorage(db, logger).Migrate(ctx)
}
