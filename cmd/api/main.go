package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/checkout"
	"github.com/ariefcatur/freshpodd-orders/internal/config"
	"github.com/ariefcatur/freshpodd-orders/internal/httpx"
	kafkax "github.com/ariefcatur/freshpodd-orders/internal/kafka"
	"github.com/ariefcatur/freshpodd-orders/internal/logger"
	"github.com/ariefcatur/freshpodd-orders/internal/metrics"
	"github.com/ariefcatur/freshpodd-orders/internal/notify"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
	"github.com/ariefcatur/freshpodd-orders/internal/quotes"
	"github.com/ariefcatur/freshpodd-orders/internal/redisx"
	"github.com/ariefcatur/freshpodd-orders/internal/wishlist"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	addr     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "api",
	Short: "FreshPodd storefront API",
	Long: `Serves the catalog, carts, checkout and order ledger over HTTP.

Configuration comes from the environment (and .env); flags override it.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	_ = godotenv.Load()

	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.Init(cfg.ServiceName, cfg.Development())
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Catalog
	store := catalog.NewStore(log)
	if cfg.SeedCatalog {
		if err := catalog.Seed(ctx, store); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	// Kafka producers, satu per topic
	var (
		bus       *orders.EventBus
		producers []*kafkax.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		bus = &orders.EventBus{Sinks: map[string]orders.Sink{}, Producer: cfg.ServiceName}
		for _, topic := range []string{orders.TopicOrderPlaced, orders.TopicOrderStatusChanged, orders.TopicStockRejected, orders.TopicBackInStock} {
			p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, log)
			p.Start(context.Background())
			bus.Sinks[topic] = p
			producers = append(producers, p)
		}
	} else {
		log.Warn().Msg("KAFKA_BROKERS empty, events are not published")
	}

	// Notifications
	var emitter notify.Emitter = notify.LogEmitter{Log: log}
	if bus != nil {
		emitter = notify.Fanout{notify.EventEmitter{Bus: bus}, emitter}
	}
	registry := notify.NewRegistry(emitter, m, log)
	store.OnRestock(func(ctx context.Context, productID string) { registry.Flush(ctx, productID) })

	ledger := orders.NewLedger(
		orders.WithStartSequence(cfg.OrderSeqStart),
		orders.WithStrictTransitions(cfg.StrictOrderTransitions),
	)
	svc := &checkout.Service{
		Catalog: store,
		Ledger:  ledger,
		Policy:  orders.DefaultPaymentPolicy(),
		TaxRate: cfg.TaxRate,
		Metrics: m,
		Log:     log.With().Str("component", "checkout").Logger(),
	}
	h := &httpx.Handler{
		Catalog:  store,
		Carts:    cart.NewRegistry(),
		Checkout: svc,
		Ledger:   ledger,
		Notify:   registry,
		Quotes:   quotes.NewBook(nil),
		Wishlist: wishlist.NewRegistry(store),
		Metrics:  m,
		Log:      log,
	}
	if bus != nil {
		svc.Events = bus
		h.Events = bus
	}

	// Redis (opsional): idempotency checkout
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, idempotency keys may fail")
		}
		h.Idem = &redisx.Idempotency{R: rdb}
	}

	router := httpx.NewRouter(log, m, reg)
	h.Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	err = g.Wait()

	// tutup inbox -> flush & close writer
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	return err
}
