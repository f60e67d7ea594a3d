package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/restaurant-billing/internal/billing"
	"github.com/redis/go-redis/v9"
)

var ErrCompositionNotFound = errors.New("composition not found")

// CompositionStore keeps in-progress orders in Redis until they expire.
type CompositionStore struct{ R *redis.Client }

func (s *CompositionStore) Get(ctx context.Context, id string) (*billing.Composition, error) {
	b, err := s.R.Get(ctx, fmt.Sprintf(KeyComposition, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrCompositionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var c billing.Composition
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode composition %s: %w", id, err)
	}
	return &c, nil
}

func (s *CompositionStore) Put(ctx context.Context, c *billing.Composition) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, fmt.Sprintf(KeyComposition, c.ID), b, TTLComposition).Err()
}
