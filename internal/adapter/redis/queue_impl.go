package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/catalog-service/internal/entity"
	"github.com/user/catalog-service/internal/repository"
)

const (
	scrapeQueueKey   = "scrape:queue"
	scrapeDelayedKey = "scrape:queue:delayed"
	scrapeDeadKey    = "scrape:queue:dead"
)

// QueueRepoImpl implements repository.QueueRepository on Redis: a list for
// ready jobs (LPUSH/BRPOP), a sorted set scored by ready-time for delayed
// redeliveries, and a list for the dead letters. Delivery is at-least-once; a
// worker crash between BRPOP and completion loses nothing the consumer's
// idempotent upserts can't absorb on the next enqueue.
type QueueRepoImpl struct {
	client *redis.Client
}

func NewQueueRepo(client *redis.Client) *QueueRepoImpl {
	return &QueueRepoImpl{client: client}
}

func (q *QueueRepoImpl) Enqueue(ctx context.Context, env *entity.JobEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}
	return q.client.LPush(ctx, scrapeQueueKey, raw).Err()
}

// Dequeue blocks up to timeout for the next envelope. BRPOP returning
// redis.Nil means the wait elapsed with nothing to deliver.
func (q *QueueRepoImpl) Dequeue(ctx context.Context, timeout time.Duration) (*entity.JobEnvelope, error) {
	res, err := q.client.BRPop(ctx, timeout, scrapeQueueKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrQueueEmpty
		}
		return nil, err
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var env entity.JobEnvelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job envelope: %w", err)
	}
	return &env, nil
}

// Requeue schedules a redelivery: the envelope goes into the delayed sorted
// set scored by the time it becomes due.
func (q *QueueRepoImpl) Requeue(ctx context.Context, env *entity.JobEnvelope, delay time.Duration) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}
	readyAt := time.Now().Add(delay)
	return q.client.ZAdd(ctx, scrapeDelayedKey, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: raw,
	}).Err()
}

// PromoteDue moves every delayed envelope whose ready-time has passed back
// onto the ready list.
func (q *QueueRepoImpl) PromoteDue(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	due, err := q.client.ZRangeByScore(ctx, scrapeDelayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	promoted := 0
	for _, member := range due {
		// ZREM first so two promoters never double-deliver the same member.
		removed, err := q.client.ZRem(ctx, scrapeDelayedKey, member).Result()
		if err != nil {
			return promoted, err
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, scrapeQueueKey, member).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// Bury moves an envelope to the dead-letter list, its terminal state.
func (q *QueueRepoImpl) Bury(ctx context.Context, env *entity.JobEnvelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}
	return q.client.LPush(ctx, scrapeDeadKey, raw).Err()
}

func (q *QueueRepoImpl) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, scrapeQueueKey).Result()
}
