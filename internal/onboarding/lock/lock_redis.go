package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "fingate/pkg/domain"
	"fingate/pkg/platform/sentinel"
)

// releaseScript deletes the key only if this holder still owns it, so an
// expired-then-reacquired lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements OrgLock with SET NX, shared across service replicas.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) Acquire(ctx context.Context, orgID id.OrganizationID, portal id.Portal) (func(), error) {
	key := lockKey(orgID, portal)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, DefaultTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, sentinel.ErrConflict
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}
