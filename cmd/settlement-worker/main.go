package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/consumer"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/producer"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/internal/pricing"
	"github.com/radieske/cricket-bet-ledger/internal/shared/cache"
	"github.com/radieske/cricket-bet-ledger/internal/shared/config"
	"github.com/radieske/cricket-bet-ledger/internal/shared/db"
	"github.com/radieske/cricket-bet-ledger/internal/shared/kafka"
	"github.com/radieske/cricket-bet-ledger/internal/shared/lock"
	"github.com/radieske/cricket-bet-ledger/internal/shared/logger"
	"github.com/radieske/cricket-bet-ledger/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load("settlement-worker")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.KafkaBrokers == "" {
		log.Fatal("KAFKA_BROKERS required for settlement-worker")
	}

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := db.Connect(cfg.StorageDriver, cfg.PostgresDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer conn.Close()
	dialect, _ := repo.ParseDialect(cfg.StorageDriver)
	store := repo.New(conn, dialect)
	if err := store.Migrate(ctx); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	checks := []metrics.Check{{Name: "db", Fn: conn.PingContext}}
	m := metrics.NewLedger(prometheus.DefaultRegisterer)
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_worker_messages_consumed_total", Help: "mensagens outcome_declared consumidas"})
	dlq := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_worker_dlq_total", Help: "mensagens enviadas para a DLQ"})
	prometheus.MustRegister(consumed, dlq)

	// a liquidação não precifica; o engine só satisfaz a dependência do ledger
	engine := pricing.NewEngine(log, store, pricing.Options{
		Bounds:  pricing.Bounds{Min: cfg.MinOdds, Max: cfg.MaxOdds},
		Dynamic: domain.ParseBetTypes(cfg.DynamicBetTypes),
	})

	lopts := ledger.Options{
		MinStake:        cfg.MinStake,
		StartingBalance: cfg.StartingBalance,
		LockTTL:         cfg.SettlementLockTTL,
		Hooks:           ledger.MetricsHooks(m),
	}

	// trava distribuída: várias réplicas do worker (ou o admin via HTTP) na mesma partida
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		lopts.Locker = lock.NewRedisLocker(rdb, "ledger:lock:")
		checks = append(checks, metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
	}

	// Kafka: consumer outcome_declared, producer bet_settled e DLQ
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicOutcomeDeclared, cfg.SettlementGroupID)
	defer reader.Close()
	settledW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledW.Close()
	lopts.Publisher = producer.NewKafkaPublisher(nil, settledW)

	var dlqW *kafka.Writer
	if cfg.TopicOutcomeDeclaredDLQ != "" {
		dlqW = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOutcomeDeclaredDLQ)
		defer dlqW.Close()
	}

	svc := ledger.New(log, store, engine, lopts)

	proc := &consumer.Processor{
		Log:        log,
		Reader:     reader,
		Settler:    svc,
		Retries:    cfg.SettleRetries,
		Backoff:    cfg.SettleBackoff,
		OnConsumed: func() { consumed.Inc() },
		OnDLQ:      func() { dlq.Inc() },
		OnError:    func(stage string) { m.Errors.WithLabelValues("worker_" + stage).Inc() },
	}
	if dlqW != nil {
		proc.DLQ = dlqW
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, checks...)
	defer func() {
		sctx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = metricsSrv.Shutdown(sctx)
	}()

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicOutcomeDeclared),
		zap.String("publish", cfg.TopicBetSettled),
		zap.String("dlq", cfg.TopicOutcomeDeclaredDLQ),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
