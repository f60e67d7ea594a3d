package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

// reader is the part of *kafka.Reader the consumer drives.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r          reader
	workers    int
	log        zerolog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:          r,
		workers:    workers,
		log:        log.With().Str("topic", topic).Str("group", group).Logger(),
		backoff:    200 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Start fetches until ctx ends. Each partition is pinned to one worker, and a
// worker retries a failing message until it succeeds before committing it, so
// no offset is ever committed past an unprocessed one.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(ctx)
	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		for _, l := range lanes {
			close(l)
		}
		wg.Wait()
		_ = c.r.Close()
	}()

	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 128)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if ctx.Err() != nil {
					return
				}
				c.process(ctx, h, m)
			}
		}(lanes[i])
	}

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case lanes[m.Partition%c.workers] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) process(ctx context.Context, h Handler, m kafka.Message) {
	wait := c.backoff
	for {
		err := h(ctx, m)
		if err == nil {
			break
		}
		c.log.Warn().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).
			Dur("retry_in", wait).Msg("handler error")
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if wait *= 2; wait > c.maxBackoff {
			wait = c.maxBackoff
		}
	}
	if err := c.r.CommitMessages(ctx, m); err != nil {
		c.log.Warn().Err(err).Int("partition", m.Partition).Int64("offset", m.Offset).Msg("commit failed")
	}
}
