package queue

import (
	"fmt"

	"github.com/christinepetrosyan/Timebook/config"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// NewAsynqClient connects the notification producer to the same Redis as the cache.
func NewAsynqClient(cfg config.RedisConfig) *asynq.Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	logrus.Info("Notification queue client ready")

	return client
}
