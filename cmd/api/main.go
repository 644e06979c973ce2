package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chinhon/go-storefront/internal/catalog"
	"github.com/chinhon/go-storefront/internal/config"
	"github.com/chinhon/go-storefront/internal/httpx"
	"github.com/chinhon/go-storefront/internal/inventory"
	kafkax "github.com/chinhon/go-storefront/internal/kafka"
	"github.com/chinhon/go-storefront/internal/orders"
	"github.com/chinhon/go-storefront/internal/postgres"
	"github.com/chinhon/go-storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	prod.Start(ctx)

	// Services & handlers
	svc := &orders.Service{
		Store:     &orders.PGStore{DB: db},
		Redis:     rdb,
		Publisher: prod,
		Log:       log,
		Name:      cfg.ServiceName,
	}
	items := &inventory.ItemRepo{DB: db}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Service: svc}).Register(router)
	(&httpx.CatalogHandler{Catalog: &catalog.Repo{DB: db}, Items: items}).Register(router)
	(&httpx.StockHandler{Items: items, Ledger: &inventory.PGLedger{DB: db}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
