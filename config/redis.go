package config

import (
	"context"
	"time"

	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil without error when redis is not configured.
func ConnectRedis(cfg RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		utils.LogInfo("Redis not configured, product cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis connection failed")
	}

	utils.LogInfo("Connected to redis at %s", cfg.Addr)
	return client, nil
}
