package main

import (
	"context"
	"errors"
	"github.com/ariefcatur/freshpodd-orders/internal/config"
	kafkax "github.com/ariefcatur/freshpodd-orders/internal/kafka"
	"github.com/ariefcatur/freshpodd-orders/internal/logger"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/notify"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Init("stock-notifier", true)
		boot.Fatal().Err(err).Msg("config")
	}
	svcName := cfg.ServiceName + "-notifier"
	log := logger.Init(svcName, cfg.Development())
	logger.SetLevel(cfg.LogLevel)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	d := &notify.Delivery{
		Mailer:      notify.LogMailer{Log: log},
		Metrics:     metrics.New(reg),
		ServiceName: svcName,
		Log:         log,
	}

	// Redis dedup (event_id)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis")
		}
		d.Dedup = &redisx.Dedup{R: rdb}
	} else {
		log.Warn().Msg("REDIS_ADDR empty, redelivered events may send twice")
	}

	// metrics endpoint
	msrv := &http.Server{Addr: cfg.NotifyMetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics listener")
		}
	}()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifyGroup, orders.TopicBackInStock, cfg.NotifyWorkers, log)
	log.Info().
		Str("group", cfg.NotifyGroup).
		Str("topic", orders.TopicBackInStock).
		Int("workers", cfg.NotifyWorkers).
		Msg("notifier consumer started")
	if err := cons.Start(ctx, d.HandleBackInStock); err != nil {
		log.Error().Err(err).Msg("consumer exit")
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = msrv.Shutdown(sctx)
	log.Info().Msg("notifier stopped")
}
