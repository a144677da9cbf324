package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"upwork-scraper/internal/api"
	"upwork-scraper/internal/config"
	"upwork-scraper/internal/database"
	"upwork-scraper/internal/events"
	"upwork-scraper/internal/parser"
	"upwork-scraper/internal/telemetry"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Log.Development {
		return zap.NewDevelopment()
	}
	gin.SetMode(gin.ReleaseMode)
	return zap.NewProduction()
}

func registerTracer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Telemetry.CollectorURL == "" {
		logger.Info("tracing disabled, OTEL_COLLECTOR_URL not set")
		return nil
	}

	shutdown, err := telemetry.InitTracer(context.Background(), cfg.Telemetry.ServiceName, cfg.Telemetry.CollectorURL)
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{OnStop: shutdown})

	logger.Info("tracing enabled", zap.String("collector", cfg.Telemetry.CollectorURL))
	return nil
}

// newListingStore returns nil when REDIS_HOST is unset.
func newListingStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*database.ListingStore, error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		logger.Info("listing archive disabled, REDIS_HOST not set")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := database.NewRedisClient(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to Redis", zap.String("addr", addr))

	store := database.NewListingStore(db, cfg.Redis.TTL, logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

// newPublisher returns nil when NATS_URL is unset.
func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*events.Publisher, error) {
	if cfg.NATS.URL == "" {
		logger.Info("scrape events disabled, NATS_URL not set")
		return nil, nil
	}

	pub, err := events.NewPublisher(cfg.NATS, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to NATS",
		zap.String("url", cfg.NATS.URL),
		zap.String("subject", cfg.NATS.Subject))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return pub.Close() },
	})
	return pub, nil
}

// newSinks collects the configured sinks without storing typed nils.
func newSinks(store *database.ListingStore, pub *events.Publisher) []parser.ListingSink {
	var sinks []parser.ListingSink
	if store != nil {
		sinks = append(sinks, store)
	}
	if pub != nil {
		sinks = append(sinks, pub)
	}
	return sinks
}

func newArchive(store *database.ListingStore) api.Archive {
	if store == nil {
		return nil
	}
	return store
}

func newScraper(p *parser.UpworkParser) api.Scraper {
	return p
}

func newHTTPServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine, logger *zap.Logger) *http.Server {
	srv := api.NewServer(cfg.Port, router)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.Load,
			newLogger,
			parser.NewRenderer,
			newListingStore,
			newPublisher,
			newSinks,
			newArchive,
			parser.NewUpworkParser,
			newScraper,
			api.NewHandler,
			api.NewRouter,
			newHTTPServer,
		),
		fx.Invoke(
			registerTracer,
			func(*http.Server) {},
		),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
