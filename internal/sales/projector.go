// Package sales keeps a live per-day sales projection in Redis, fed by
// billing events.
package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/restaurant-billing/internal/kafka"
	"github.com/ariefcatur/restaurant-billing/internal/orders"
	"github.com/ariefcatur/restaurant-billing/internal/redisx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

const dateLayout = "2006-01-02"

type Projector struct {
	Redis       *redis.Client
	ServiceName string
	Log         zerolog.Logger
	// Location decides which calendar day an order falls on.
	Location *time.Location
}

type Day struct {
	Date      string             `json:"date"`
	Revenue   float64            `json:"revenue"`
	Orders    int64              `json:"orders"`
	ByPayment map[string]float64 `json:"by_payment"`
}

func (p *Projector) loc() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

// Handle: dipasang sebagai handler consumer.
// The dedup mark is written in the same MULTI as the projection, so an error
// leaves neither behind and the consumer's retry applies the event once.
// Messages that can never decode are dropped instead of retried.
func (p *Projector) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		p.Log.Warn().Err(err).Msg("drop undecodable message")
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, p.ServiceName, env.EventID)
	seen, err := p.Redis.Exists(ctx, dkey).Result()
	if err != nil {
		return err
	}
	if seen > 0 {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderPlaced:
		pl, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			p.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("drop undecodable payload")
			return nil
		}
		return p.orderPlaced(ctx, dkey, pl)
	case orders.EventOrdersCleared:
		return p.ordersCleared(ctx, dkey)
	default:
		return nil
	}
}

func (p *Projector) orderPlaced(ctx context.Context, dkey string, pl orders.OrderPlacedPayload) error {
	date := pl.OrderedAt.In(p.loc()).Format(dateLayout)
	key := fmt.Sprintf(redisx.KeySalesDaily, date)

	_, err := p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrByFloat(ctx, key, "revenue", pl.Total)
		pipe.HIncrBy(ctx, key, "orders", 1)
		pipe.HIncrByFloat(ctx, key, "payment:"+string(pl.Payment), pl.Total)
		pipe.Expire(ctx, key, redisx.TTLSales)
		pipe.SAdd(ctx, redisx.KeySalesDays, date)
		pipe.Set(ctx, dkey, "1", redisx.TTLDedup)
		return nil
	})
	if err == nil {
		p.Log.Debug().Int64("order_id", pl.OrderID).Str("date", date).Msg("projected order")
	}
	return err
}

func (p *Projector) ordersCleared(ctx context.Context, dkey string) error {
	days, err := p.Redis.SMembers(ctx, redisx.KeySalesDays).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(days)+1)
	for _, d := range days {
		keys = append(keys, fmt.Sprintf(redisx.KeySalesDaily, d))
	}
	keys = append(keys, redisx.KeySalesDays)
	_, err = p.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.Set(ctx, dkey, "1", redisx.TTLDedup)
		return nil
	})
	if err != nil {
		return err
	}
	p.Log.Info().Int("days", len(days)).Msg("sales projection cleared")
	return nil
}

// Live reads the projection for one calendar day.
func Live(ctx context.Context, rdb *redis.Client, date time.Time) (Day, error) {
	d := Day{Date: date.Format(dateLayout), ByPayment: map[string]float64{}}
	fields, err := rdb.HGetAll(ctx, fmt.Sprintf(redisx.KeySalesDaily, d.Date)).Result()
	if err != nil {
		return d, err
	}
	for k, v := range fields {
		switch {
		case k == "revenue":
			d.Revenue, _ = strconv.ParseFloat(v, 64)
		case k == "orders":
			d.Orders, _ = strconv.ParseInt(v, 10, 64)
		case len(k) > len("payment:") && k[:len("payment:")] == "payment:":
			d.ByPayment[k[len("payment:"):]], _ = strconv.ParseFloat(v, 64)
		}
	}
	return d, nil
}
