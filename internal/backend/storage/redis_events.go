package storage

import (
	"SiteWatch/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckEventsChannel канал, в который публикуются результаты проверок
// для realtime слоя (websocket шлюз подписывается на него)
const CheckEventsChannel = "check_events"

type redisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(cfg *config.RedisConfig, log *slog.Logger) (EventPublisher, error) {
	client := redis.NewClient(cfg.GetRedisOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Connected to Redis")
	return &redisPublisher{client: client}, nil
}

// Публикуем событие в канал
func (r *redisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return r.client.Publish(ctx, channel, data).Err()
}

func (r *redisPublisher) Close() error {
	return r.client.Close()
}
