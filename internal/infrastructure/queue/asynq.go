package queue

import (
	"medilink/config"
	"medilink/internal/infrastructure/cache"

	"github.com/hibiken/asynq"
)

// RedisOpt points asynq at the same Redis the API uses.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cache.Addr(cfg),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}

func NewServer(redisCfg config.RedisConfig, queueCfg config.QueueConfig, logger asynq.Logger) *asynq.Server {
	concurrency := queueCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	return asynq.NewServer(RedisOpt(redisCfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: logger,
	})
}
