// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"premium-bot/internal/alerts"
	"premium-bot/internal/audit"
	"premium-bot/internal/common/config"
	"premium-bot/internal/common/database"
	"premium-bot/internal/common/logger"
	"premium-bot/internal/common/observability"
	"premium-bot/internal/entitlement"
	"premium-bot/internal/gateway/telegram"
	"premium-bot/internal/payment"
)

// retryWithBackoff attempts an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting premium bot",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.Metrics.JaegerEndpoint)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Entitlement store: redis when enabled, in-memory otherwise ---
	var store entitlement.Store = entitlement.NewMemoryStore()
	if cfg.Database.Redis.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var dialErr error
			redisClient, dialErr = database.NewRedis(cfg.Database.Redis)
			if dialErr != nil {
				return dialErr
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis unavailable", zap.Error(err))
		}
		defer redisClient.Close()
		store = entitlement.NewRedisStore(redisClient.Client)
		zapLog.Info("entitlement store: redis")
	} else {
		zapLog.Info("entitlement store: in-memory (volatile)")
	}

	// --- Payment ledger: postgres when enabled, in-memory otherwise ---
	var ledger payment.Ledger = payment.NewMemoryLedger()
	if cfg.Database.Postgres.Enabled {
		var pgClient *database.PostgresClient
		err = retryWithBackoff(func() error {
			var dialErr error
			pgClient, dialErr = database.NewPostgres(cfg.Database.Postgres)
			if dialErr != nil {
				return dialErr
			}
			return pgClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Postgres connection")
		if err != nil {
			zapLog.Fatal("postgres unavailable", zap.Error(err))
		}
		defer pgClient.Close()
		ledger = payment.NewPostgresLedger(pgClient.DB)
		zapLog.Info("payment ledger: postgres")
	} else {
		zapLog.Info("payment ledger: in-memory (volatile)")
	}

	// --- Reconciliation alerting ---
	alertManager, err := alerts.NewManager(ctx, cfg.Alerts, log)
	if err != nil {
		zapLog.Fatal("alerts init failed", zap.Error(err))
	}

	// --- Audit trail ---
	var auditSink payment.AuditSink
	if cfg.Audit.Enabled && cfg.Database.Elasticsearch.Enabled {
		esClient, esErr := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if esErr != nil {
			zapLog.Fatal("elasticsearch init failed", zap.Error(esErr))
		}
		if pingErr := esClient.Ping(); pingErr != nil {
			zapLog.Warn("elasticsearch unreachable, audit is best-effort", zap.Error(pingErr))
		}
		auditSink = audit.NewElasticsearch(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("audit trail: elasticsearch", zap.String("index", cfg.Database.Elasticsearch.Index))
	}

	coordinator := payment.NewCoordinator(cfg.Policy, store, ledger, alertManager, auditSink, obs, log)

	gateway, err := telegram.New(cfg.Telegram, cfg.Policy, coordinator, log)
	if err != nil {
		zapLog.Fatal("telegram gateway init failed", zap.Error(err))
	}

	// --- Metrics endpoint ---
	metricsServer := &http.Server{Addr: cfg.Metrics.ListenAddress, Handler: nil}
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		zapLog.Info("metrics endpoint listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("metrics server failed", zap.Error(err))
		}
	}()

	gateway.Start(ctx)

	zapLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
