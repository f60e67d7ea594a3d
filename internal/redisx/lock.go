package redisx

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("resource is locked")

// Hapus lock hanya kalau token masih milik kita.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type Locker struct{ R *redis.Client }

// Lock takes key for TTLLock. It fails fast with ErrLocked instead of waiting.
func (l *Locker) Lock(ctx context.Context, key string) (unlock func(context.Context), err error) {
	token := uuid.NewString()
	ok, err := l.R.SetNX(ctx, key, token, TTLLock).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) {
		_ = unlockScript.Run(ctx, l.R, []string{key}, token).Err()
	}, nil
}
