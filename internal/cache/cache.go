package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Cache keeps hot read-side payloads in Redis. It is strictly an
// accelerator: every method on a nil *Cache is a no-op, and callers treat
// a miss and a failure the same way, by falling back to the repositories.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg config.RedisConfig, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	nuts.L.Infof("[Cache] Connected to redis at %s:%d (db %d)", cfg.Host, cfg.Port, cfg.DB)
	return &Cache{client: client, ttl: ttl}, nil
}

func assessmentKey(siloID string) string {
	return "agrosilo:assessment:latest:" + siloID
}

// SetLatestAssessment stores the newest assessment snapshot of a silo.
func (c *Cache) SetLatestAssessment(ctx context.Context, assessment *models.Assessment) error {
	if c == nil || assessment == nil {
		return nil
	}

	payload, err := json.Marshal(assessment)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, assessmentKey(assessment.SiloID), payload, c.ttl).Err()
}

// LatestAssessment returns the cached snapshot of a silo, or nil on miss.
func (c *Cache) LatestAssessment(ctx context.Context, siloID string) (*models.Assessment, error) {
	if c == nil {
		return nil, nil
	}

	payload, err := c.client.Get(ctx, assessmentKey(siloID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	assessment := &models.Assessment{}
	if err := json.Unmarshal(payload, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

// InvalidateSilo drops every cached payload of one silo.
func (c *Cache) InvalidateSilo(ctx context.Context, siloID string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, assessmentKey(siloID)).Err()
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
