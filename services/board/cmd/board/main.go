package main

import (
	"context"
	stderrors "errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shenanigigs/common/database"
	"shenanigigs/common/session"
	redisstore "shenanigigs/common/session/redis"
	"shenanigigs/common/telemetry"
	"shenanigigs/services/board/internal/board"
	"shenanigigs/services/board/internal/config"
	"shenanigigs/services/board/internal/events"
	"shenanigigs/services/board/internal/messaging"
	"shenanigigs/services/board/internal/scheduler"
	"shenanigigs/services/board/internal/source"
	"shenanigigs/services/board/internal/web"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	serviceName    = "board-service"
	serviceVersion = "0.1.0"
	janitorPeriod  = time.Minute
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogDevelopment {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newTracerProvider(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (trace.Tracer, error) {
	shutdown, err := telemetry.InitTracer(context.Background(), serviceName, serviceVersion, cfg.OTELCollectorURL)
	if err != nil {
		return nil, err
	}
	if cfg.OTELCollectorURL == "" {
		logger.Info("tracing exporter disabled")
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return telemetry.GetTracer("shenanigigs/board"), nil
}

func newSessionStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) session.Store {
	opts := session.Options{
		DefaultTTL:    cfg.SessionTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}

	var store session.Store
	if cfg.RedisAddr != "" {
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
		store = redisstore.New(opts)
	} else {
		logger.Info("using in-memory session store")
		store = session.NewMemoryStore(opts)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
	return store
}

// newClickHouseConnection returns a nil connection unless postings are read
// from ClickHouse.
func newClickHouseConnection(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (clickhouse.Conn, error) {
	if cfg.PostingsSource != config.SourceClickHouse {
		return nil, nil
	}

	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
	return db.Conn(), nil
}

func newNATSConnection(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	nc, err := messaging.Connect(cfg.NATSURL, cfg.NATSConnTimeout)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return nc.Drain()
		},
	})
	return nc, nil
}

func newRegistry(lc fx.Lifecycle, cfg *config.Config, src source.Source, store session.Store, logger *zap.Logger) *board.Registry {
	registry := board.NewRegistry(src, store, logger, board.RegistryOptions{
		IdleTimeout:   cfg.SessionIdleTimeout,
		SelectionTTL:  cfg.SessionTTL,
		ReloadWorkers: cfg.ReloadWorkers,
		MaxBoards:     cfg.MaxBoards,
	})

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go registry.RunJanitor(ctx, janitorPeriod)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			registry.Close()
			return nil
		},
	})
	return registry
}

func runRefreshScheduler(lc fx.Lifecycle, cfg *config.Config, registry *board.Registry, logger *zap.Logger) {
	refresher := scheduler.NewRefreshScheduler(registry, cfg.RefreshInterval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := refresher.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
					logger.Error("refresh scheduler failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func newEventHandler(cfg *config.Config, logger *zap.Logger, nc *nats.Conn, tracer trace.Tracer, registry *board.Registry) *events.Handler {
	return events.NewHandler(logger, nc, tracer, registry, cfg.NATSRefreshSubject)
}

func newRouter(cfg *config.Config, registry *board.Registry, logger *zap.Logger) *gin.Engine {
	if !cfg.LogDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	return web.NewRouter(web.NewHandler(registry, logger), logger, web.RouterOptions{
		SessionTTL:     cfg.SessionTTL,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
}

func runHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("board service listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
					logger.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func main() {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newTracerProvider,
			newSessionStore,
			newClickHouseConnection,
			newNATSConnection,
			source.New,
			newRegistry,
			newEventHandler,
			newRouter,
		),
		fx.Invoke(
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
			runRefreshScheduler,
			runHTTPServer,
		),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
