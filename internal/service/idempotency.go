package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore reserves client request ids so a retried submission is recognised.
type IdempotencyStore struct {
	redisClient *redis.Client
}

func NewIdempotencyStore(redisClient *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{redisClient: redisClient}
}

func idempotencyKey(scope string, userID uuid.UUID, requestID string) string {
	return fmt.Sprintf("%s:idem:%s:%s", scope, userID.String(), requestID)
}

// Reserve returns true for the first caller of a (scope, user, request) triple.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope string, userID uuid.UUID, requestID string) (bool, error) {
	return s.redisClient.SetNX(ctx, idempotencyKey(scope, userID, requestID), time.Now().Unix(), idempotencyTTL).Result()
}

// Release frees a reservation whose work failed, so the client may retry.
func (s *IdempotencyStore) Release(ctx context.Context, scope string, userID uuid.UUID, requestID string) error {
	return s.redisClient.Del(ctx, idempotencyKey(scope, userID, requestID)).Err()
}
