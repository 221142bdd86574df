package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"myFoodFinder/domain"

	"github.com/redis/go-redis/v9"
)

const (
	fieldSuccess   = "success"
	fieldFailure   = "failure"
	fieldUpdatedAt = "updated_at"
)

// DecisionRepository keeps one hash per place:
// "{prefix}:{place_id}" -> {success, failure, updated_at}.
type DecisionRepository struct {
	client *redis.Client
	prefix string
}

func NewDecisionRepository(client *redis.Client, prefix string) *DecisionRepository {
	if prefix == "" {
		prefix = "decision_stats"
	}
	return &DecisionRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *DecisionRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// GetStats reads every requested hash in one pipelined round trip.
func (r *DecisionRepository) GetStats(ctx context.Context, ids []string) (map[string]domain.DecisionStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[string]domain.DecisionStat, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HMGet(ctx, r.key(id), fieldSuccess, fieldFailure, fieldUpdatedAt)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read decision stats from Redis: %w", err)
	}

	for i, id := range ids {
		vals, err := cmds[i].Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read decision stats for %s: %w", id, err)
		}
		st, err := statFromValues(id, vals)
		if err != nil {
			return nil, err
		}
		out[id] = st
	}

	return out, nil
}

// RecordDecision increments one counter with HINCRBY, which Redis applies
// atomically and which creates the hash when missing.
func (r *DecisionRepository) RecordDecision(ctx context.Context, id string, accepted bool) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	field := fieldFailure
	if accepted {
		field = fieldSuccess
	}

	key := r.key(id)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, field, 1)
		pipe.HSet(ctx, key, fieldUpdatedAt, time.Now().Unix())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record decision in Redis: %w", err)
	}

	return nil
}

// statFromValues maps an HMGET reply (success, failure, updated_at) onto a
// stat. Missing fields are zero.
func statFromValues(id string, vals []interface{}) (domain.DecisionStat, error) {
	st := domain.DecisionStat{ID: id}
	if len(vals) < 2 {
		return st, nil
	}

	var err error
	if st.SuccessCount, err = parseCount(vals[0]); err != nil {
		return st, fmt.Errorf("invalid success count for %s: %w", id, err)
	}
	if st.FailureCount, err = parseCount(vals[1]); err != nil {
		return st, fmt.Errorf("invalid failure count for %s: %w", id, err)
	}
	if len(vals) > 2 {
		if ts, err := parseCount(vals[2]); err == nil && ts > 0 {
			st.UpdatedAt = time.Unix(ts, 0)
		}
	}
	return st, nil
}

func parseCount(v interface{}) (int64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(val, 10, 64)
	case int64:
		return val, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
