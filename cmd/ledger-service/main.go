package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/cricket-bet-ledger/internal/domain"
	"github.com/radieske/cricket-bet-ledger/internal/ledger"
	lhttp "github.com/radieske/cricket-bet-ledger/internal/ledger/http"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/producer"
	"github.com/radieske/cricket-bet-ledger/internal/ledger/repo"
	"github.com/radieske/cricket-bet-ledger/internal/pricing"
	qcache "github.com/radieske/cricket-bet-ledger/internal/pricing/cache"
	"github.com/radieske/cricket-bet-ledger/internal/pricing/ws"
	"github.com/radieske/cricket-bet-ledger/internal/shared/cache"
	"github.com/radieske/cricket-bet-ledger/internal/shared/config"
	"github.com/radieske/cricket-bet-ledger/internal/shared/db"
	"github.com/radieske/cricket-bet-ledger/internal/shared/kafka"
	"github.com/radieske/cricket-bet-ledger/internal/shared/lock"
	"github.com/radieske/cricket-bet-ledger/internal/shared/logger"
	"github.com/radieske/cricket-bet-ledger/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load("ledger-service")
	if err != nil {
		panic(fmt.Errorf("config: %w", err))
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// banco: Postgres em produção, SQLite embarcado em local
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
	log.Info("storage ready", zap.String("driver", cfg.StorageDriver))

	checks := []metrics.Check{{Name: "db", Fn: conn.PingContext}}

	// Redis é opcional: cache de cotações, Pub/Sub do WS e trava de liquidação
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		if rdb, err = cache.ConnectRedis(cfg.RedisAddr); err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		checks = append(checks, metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
		log.Info("redis connected")
	}

	m := metrics.NewLedger(prometheus.DefaultRegisterer)
	hub := ws.NewHub(log, func(r *http.Request) bool { return true })

	table, err := pricing.LoadTable(cfg.OddsTablePath)
	if err != nil {
		log.Fatal("odds table", zap.Error(err))
	}
	popts := pricing.Options{
		Table:       table,
		Bounds:      pricing.Bounds{Min: cfg.MinOdds, Max: cfg.MaxOdds},
		Dynamic:     domain.ParseBetTypes(cfg.DynamicBetTypes),
		OnRecompute: func(bt string) { m.Recomputes.WithLabelValues(bt).Inc() },
		OnError:     func(stage string) { m.Errors.WithLabelValues("pricing_" + stage).Inc() },
	}
	if rdb != nil {
		popts.Cache = qcache.NewRedisCache(rdb, cfg.QuoteCacheTTL)
		popts.Sink = qcache.NewRedisBroadcaster(rdb, cfg.RedisQuoteChannel)
		// cada instância repassa o canal para os seus clientes WS
		ws.StartRedisSubscriber(ctx, log, rdb, cfg.RedisQuoteChannel, hub)
	} else {
		popts.Sink = ws.HubSink{Hub: hub}
	}
	engine := pricing.NewEngine(log, store, popts)

	lopts := ledger.Options{
		MinStake:        cfg.MinStake,
		StartingBalance: cfg.StartingBalance,
		LockTTL:         cfg.SettlementLockTTL,
		Hooks:           ledger.MetricsHooks(m),
	}
	if rdb != nil {
		lopts.Locker = lock.NewRedisLocker(rdb, "ledger:lock:")
	}

	// Kafka é opcional: eventos bet_placed / bet_settled
	if cfg.KafkaBrokers != "" {
		placedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
		defer placedW.Close()
		settledW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
		defer settledW.Close()
		lopts.Publisher = producer.NewKafkaPublisher(placedW, settledW)
		log.Info("kafka writers ready", zap.String("placed", cfg.TopicBetPlaced), zap.String("settled", cfg.TopicBetSettled))
	}

	svc := ledger.New(log, store, engine, lopts)

	api := lhttp.NewAPI(log, svc, engine, lhttp.Options{
		AdminToken: cfg.AdminToken,
		BetRate:    cfg.BetRateLimit,
		BetBurst:   cfg.BetRateBurst,
		WS:         hub.HandleWS,
	})
	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set, admin routes disabled")
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, checks...)

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("ledger-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("ledger-service stopped")
}
