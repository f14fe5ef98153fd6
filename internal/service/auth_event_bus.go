package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"medilink/pkg/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AuthEventBus fans auth-state changes out over Redis pub/sub, one channel per user.
type AuthEventBus struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewAuthEventBus(redisClient *redis.Client, log *logrus.Logger) *AuthEventBus {
	return &AuthEventBus{redisClient: redisClient, log: log}
}

func authChannel(userID uuid.UUID) string {
	return fmt.Sprintf("auth:events:%s", userID.String())
}

// Publish stamps the route on the event and sends it.
func (b *AuthEventBus) Publish(ctx context.Context, userID uuid.UUID, event session.Event) error {
	event.Route = session.Classify(event.Session)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.redisClient.Publish(ctx, authChannel(userID), payload).Err()
}

// Subscribe streams the user's events until ctx ends or unsubscribe is called.
func (b *AuthEventBus) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan session.Event, func(), error) {
	pubsub := b.redisClient.Subscribe(ctx, authChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe auth events: %w", err)
	}

	out := make(chan session.Event)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev session.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warnf("Dropping malformed auth event: %+v", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, unsubscribe, nil
}
