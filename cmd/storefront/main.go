package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/paymentui"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openBackupStore(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to open backup store", zap.String("driver", cfg.BackupDriver), zap.Error(err))
	}
	defer store.Close()
	zl.Info("backup store ready", zap.String("driver", cfg.BackupDriver))
	warnPendingBackup(ctx, store, zl)

	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.BackendBaseURL,
		MaxFailures:    cfg.BreakerMaxFailures,
		OpenTimeout:    cfg.BreakerOpenTimeout,
		RequestTimeout: cfg.RequestTimeout,
	}, zl)

	var orders checkout.OrderSubmitter = client
	if cfg.OrderTransport == config.OrdersKafka {
		publisher := backend.NewKafkaOrderPublisher(cfg.KafkaOrdersTopic, zl, cfg.KafkaBrokers...)
		defer publisher.Close()
		orders = publisher
		zl.Info("orders are published to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaOrdersTopic))
	}

	engine := cart.NewEngine(zl)
	engine.Observe(func(c domain.Cart) {
		zl.Debug("cart changed",
			zap.Int("entries", len(c.Entries)),
			zap.Int("total_quantities", c.TotalQuantities),
			zap.String("total_price", c.TotalPrice.StringFixed(2)))
	})

	bridge := paymentui.NewBridge(zl)
	orch := checkout.NewOrchestrator(checkout.Deps{
		Cart:     engine,
		Backup:   store,
		Payments: client,
		Sheet:    bridge,
		Orders:   orders,
	}, checkout.Config{
		MerchantDisplayName: cfg.MerchantDisplayName,
		RequestTimeout:      cfg.RequestTimeout,
		SessionTTL:          cfg.SessionTTL,
	}, zl)

	checkoutHandler := api.NewCheckoutHandler(ctx, orch, bridge, cfg.RequestTimeout, zl)
	router := api.NewRouter(api.Handlers{
		Products: api.NewProductHandler(client, cfg.RequestTimeout),
		Cart:     api.NewCartHandler(engine, client, cfg.RequestTimeout),
		Meals:    api.NewMealHandler(client, engine, cfg.RequestTimeout, zl),
		Checkout: checkoutHandler,
	}, zl, 2*cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	zl.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	// sessions still presenting the sheet end as canceled once ctx is done
	checkoutHandler.Wait()

	zl.Info("server exited")
}

func openBackupStore(ctx context.Context, cfg *config.Config) (backup.Store, error) {
	switch cfg.BackupDriver {
	case config.BackupRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return backup.NewRedisStore(client), nil
	case config.BackupSQLite:
		return backup.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.BackupDriver)
	}
}

// A backup left on disk means a previous run stopped between payment and
// reconciliation, or a payment failed before the sheet was shown.
func warnPendingBackup(ctx context.Context, store backup.Store, zl *zap.Logger) {
	data, err := store.Get(ctx, backup.CartKey)
	if errors.Is(err, backup.ErrNotFound) {
		return
	}
	if err != nil {
		zl.Warn("failed to read cart backup", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}
	zl.Warn("cart backup found from an earlier checkout; reconcile it with POST /api/v1/checkout/recover",
		zap.Int("bytes", len(data)))
}

