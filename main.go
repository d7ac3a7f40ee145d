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

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/application/catalog"
	"github.com/Zhima-Mochi/minimarket/internal/application/dashboard"
	appinventory "github.com/Zhima-Mochi/minimarket/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/minimarket/internal/application/order"
	"github.com/Zhima-Mochi/minimarket/internal/application/relay"
	appreview "github.com/Zhima-Mochi/minimarket/internal/application/review"
	"github.com/Zhima-Mochi/minimarket/internal/application/shipping"
	"github.com/Zhima-Mochi/minimarket/internal/config"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/broker/amqp"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/broker/kafka"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/cache/rediscache"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/filestore"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/postgres"
	"github.com/Zhima-Mochi/minimarket/internal/infrastructure/security"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	httppresentation "github.com/Zhima-Mochi/minimarket/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minimarket/internal/presentation/worker"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "minimarket:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	baseLogger, err := zaplogger.New(
		zaplogger.Options{LogFile: cfg.LogFile, Debug: cfg.Debug},
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	if err != nil {
		return err
	}
	defer func() { _ = baseLogger.Sync() }()
	systemLogger := baseLogger.With(
		observability.F("trace_id", "system"),
		observability.F("span_id", "system"),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	counters, histograms := prometrics.Instruments(prometrics.New("", "", reg))
	tel := telemetry.New(oteltrace.New(cfg.ServiceName), baseLogger, counters, histograms)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	var cache catalog.ProductCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			systemLogger.Warn("redis_unreachable", observability.F("addr", cfg.RedisAddr), observability.F("error", err))
		}
		cache = rediscache.NewProductCache(client, cfg.CacheTTL)
	}

	images, err := filestore.NewLocal(cfg.UploadDir)
	if err != nil {
		return err
	}

	bus := outbox.NewBus(tel,
		outbox.WithQueueSize(cfg.BusQueueSize),
		outbox.WithConcurrency(cfg.BusConcurrency),
		outbox.WithMiddleware(workerpresentation.WithEventContext(tel, map[string]string{"component": "worker"})),
	)

	sink, closeSink, err := openSink(ctx, cfg, systemLogger)
	if err != nil {
		return err
	}
	defer closeSink()

	appinventory.NewWorker(bus, cfg.LowStockLevel, tel).Start()
	catalog.NewWorker(bus, cache, tel).Start()
	if sink != nil {
		relay.NewWorker(bus, sink, tel).Start()
	}
	bus.Start(ctx)

	ids := id.NewUUIDGenerator()
	repos := store.Repos()
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.ServiceName)
	services := httppresentation.Services{
		Auth:        auth.NewService(repos.Users, security.NewPasswordHasher(0), tokens, tokens, ids, tel, auth.WithBootstrapAdmin(cfg.AdminEmail)),
		Catalog:     catalog.NewService(store, cache, images, bus, tel),
		Stock:       appinventory.NewAdjustStockUseCase(store, bus, tel),
		Checkout:    apporder.NewPlaceOrderUseCase(store, ids, bus, tel),
		Orders:      apporder.NewQueryService(repos.Orders, repos.Products, repos.Users, tel),
		Shipping:    shipping.NewUpdateStatusUseCase(store, bus, cfg.ShippingStrict, tel),
		Reviews:     appreview.NewCreateReviewUseCase(store, ids, bus, tel),
		ReviewQuery: appreview.NewQueryService(repos.Reviews, repos.Orders, tel),
		Dashboard:   dashboard.NewService(repos.Products, repos.Orders, tel),
	}

	gin.SetMode(cfg.GinMode)
	handler := httppresentation.NewHandler(services, httppresentation.Options{
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, tel)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		systemLogger.Info("http_server_start", observability.F("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error", observability.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
	} else {
		systemLogger.Info("http_server_stopped")
	}
	bus.Stop(shutdownCtx)
	return nil
}

// openStore returns the Postgres store when DATABASE_URL is set and the in-memory store otherwise.
func openStore(ctx context.Context, cfg config.Config, log observability.Logger) (uow.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("store_in_memory", observability.F("reason", "DATABASE_URL not set"))
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.Options{
		MaxOpenConns:    cfg.DBMaxConns,
		MaxIdleConns:    cfg.DBMaxConns,
		ConnMaxLifetime: 30 * time.Minute,
		LogQueries:      cfg.Debug,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = postgres.Close(db)
			return nil, nil, err
		}
		log.Info("store_migrated")
	}
	return postgres.NewStore(db), func() { _ = postgres.Close(db) }, nil
}

// openSink connects the broker events are relayed to, if any.
func openSink(ctx context.Context, cfg config.Config, log observability.Logger) (relay.Sink, func(), error) {
	switch cfg.EventSink {
	case config.SinkAMQP:
		conn, ch, err := amqp.SetupConn(cfg.AMQPURL, cfg.AMQPExchange, 5, log)
		if err != nil {
			return nil, nil, err
		}
		return amqp.NewPublisher(ch, cfg.AMQPExchange), func() {
			_ = ch.Close()
			_ = conn.Close()
		}, nil
	case config.SinkKafka:
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		p, err := kafka.NewPublisher(pingCtx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, func() {}, nil
	}
}
