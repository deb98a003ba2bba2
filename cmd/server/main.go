package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/events/amqp"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/redis"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
	"github.com/mmynk/splitledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	docs, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer docs.Close()

	m := metrics.New()

	balanceCache := cache.NewBalanceCache(cfg.CacheSize, cfg.CacheTTL, calculator.MemberBalances)
	balanceCache.OnLookup = m.ObserveCacheLookup

	publishers := []events.Publisher{balanceCache, m}
	if cfg.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		defer publisher.Close()
		publishers = append(publishers, publisher)
		slog.Info("Publishing ledger events", "exchange", cfg.AMQPExchange)
	} else {
		slog.Info("Ledger event publishing disabled - no AMQP_URL provided")
	}

	store := ledger.New(ledger.Options{
		Storage:   docs,
		Publisher: events.Multi(publishers...),
	})
	if err := store.Hydrate(ctx); err != nil {
		return err
	}
	if err := m.WatchGroups(store.Len); err != nil {
		return fmt.Errorf("failed to register ledger gauge: %w", err)
	}
	if err := m.WatchCacheEntries(balanceCache.Len); err != nil {
		return fmt.Errorf("failed to register cache gauge: %w", err)
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration)
	} else {
		slog.Warn("JWT_SECRET not set - bearer tokens are ignored")
	}

	svc := service.NewLedgerService(store, balanceCache.Balances)
	handler := newHandler(svc, m, jwtManager)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Connect server starting", "address", server.Addr, "storage", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	if cfg.CacheTTL > 0 {
		g.Go(func() error {
			return balanceCache.RunJanitor(gctx, cfg.CacheTTL)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStorage connects the document backend selected by STORAGE_BACKEND.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		slog.Warn("Using in-memory storage - data is lost on restart")
		return memory.New(), nil

	case config.BackendRedis:
		docs, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "splitledger:",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "redis", "addr", cfg.RedisAddr)
		return docs, nil

	case config.BackendSQLite:
		docs, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
		return docs, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// newHandler mounts the Connect service next to the operational endpoints.
func newHandler(svc apiconnect.LedgerServiceHandler, m *metrics.Metrics, jwtManager *auth.JWTManager) http.Handler {
	mux := http.NewServeMux()

	path, ledgerHandler := apiconnect.NewLedgerServiceHandler(svc,
		connect.WithInterceptors(
			middleware.MetricsInterceptor(m),
			middleware.OptionalAuth(jwtManager),
			middleware.LoggingInterceptor(),
		),
	)
	mux.Handle(path, ledgerHandler)
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.HTTPLogging(middleware.CORS(mux))
}
