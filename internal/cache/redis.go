package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salonbook/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	servicesKey       = "salonbook:services:active"
	reminderKeyPrefix = "salonbook:reminded:"
)

type Config struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	ServicesTTL time.Duration
}

type RedisClient struct {
	client      *redis.Client
	servicesTTL time.Duration
}

func NewRedisClient(cfg Config) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.ServicesTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &RedisClient{client: rdb, servicesTTL: ttl}, nil
}

// GetServices returns the cached active catalog; ok is false on a miss
func (c *RedisClient) GetServices(ctx context.Context) ([]models.Service, bool, error) {
	raw, err := c.client.Get(ctx, servicesKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache lookup error: %w", err)
	}

	var services []models.Service
	if err := json.Unmarshal(raw, &services); err != nil {
		return nil, false, fmt.Errorf("invalid services in cache: %w", err)
	}
	return services, true, nil
}

func (c *RedisClient) SetServices(ctx context.Context, services []models.Service) error {
	raw, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, servicesKey, raw, c.servicesTTL).Err()
}

func (c *RedisClient) InvalidateServices(ctx context.Context) error {
	return c.client.Del(ctx, servicesKey).Err()
}

// MarkReminded records that a reminder was sent. It returns false when the
// booking was already marked, so only one process sends each reminder.
func (c *RedisClient) MarkReminded(ctx context.Context, bookingID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, reminderKeyPrefix+bookingID, time.Now().Unix(), ttl).Result()
}

// ClearReminded drops the mark so a later pass retries the reminder
func (c *RedisClient) ClearReminded(ctx context.Context, bookingID string) error {
	return c.client.Del(ctx, reminderKeyPrefix+bookingID).Err()
}

func (c *RedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}
