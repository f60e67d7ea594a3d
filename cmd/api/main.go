package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/checkout"
	"github.com/ariefcatur/restaurant-billing/internal/config"
	"github.com/ariefcatur/restaurant-billing/internal/httpx"
	kafkax "github.com/ariefcatur/restaurant-billing/internal/kafka"
	"github.com/ariefcatur/restaurant-billing/internal/logx"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/postgres"
	"github.com/ariefcatur/restaurant-billing/internal/receipt"
	"github.com/ariefcatur/restaurant-billing/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logx.New(cfg.ServiceName, cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("load timezone")
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicBillingOrders, 1024, log)
	prod.Start(ctx)

	// Repo, stores & services
	repo := &orders.Repo{DB: db}
	cache := &redisx.MenuCache{R: rdb}
	menu := &redisx.CachedMenu{Source: repo, Cache: cache}
	svc := &checkout.Service{
		Menu:         menu,
		Orders:       repo,
		Compositions: &redisx.CompositionStore{R: rdb},
		Locks:        &redisx.Locker{R: rdb},
		Events:       prod,
		Log:          log,
		ServiceName:  cfg.ServiceName,
		UPIVPA:       cfg.UPIVPA,
		PayeeName:    cfg.BusinessName,
	}

	router := httpx.NewRouter(log)
	router.Group(func(r chi.Router) {
		r.Use(httpx.Auth(cfg.JWTSecret))
		(&httpx.MenuHandler{Repo: repo, Menu: menu, Cache: cache}).Register(r)
		(&httpx.CompositionsHandler{Svc: svc}).Register(r)
		(&httpx.OrdersHandler{
			Repo:     repo,
			Menu:     menu,
			Producer: prod,
			Service:  cfg.ServiceName,
			Location: loc,
			Business: receipt.Business{
				Name:    cfg.BusinessName,
				Address: cfg.BusinessAddress,
				Contact: cfg.BusinessContact,
			},
		}).Register(r)
		(&httpx.AnalyticsHandler{Repo: repo, Redis: rdb, Location: loc}).Register(r)
	})
	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, API is unauthenticated")
	}

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
