package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/restaurant-billing/internal/config"
	kafkax "github.com/ariefcatur/restaurant-billing/internal/kafka"
	"github.com/ariefcatur/restaurant-billing/internal/logx"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/redisx"
	"github.com/ariefcatur/restaurant-billing/internal/sales"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	service := cfg.ServiceName + "-projector"
	log := logx.New(service, cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("load timezone")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	proj := &sales.Projector{
		Redis:       rdb,
		ServiceName: service,
		Log:         log,
		Location:    loc,
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.ProjectorGroup, orders.TopicBillingOrders, cfg.ProjectorWorkers, log)

	go func() {
		log.Info().Str("group", cfg.ProjectorGroup).Str("topic", orders.TopicBillingOrders).
			Int("workers", cfg.ProjectorWorkers).Msg("projector consumer started")
		if err := cons.Start(ctx, proj.Handle); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}
