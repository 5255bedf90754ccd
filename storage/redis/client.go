package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"grand-hotel-backend/config"
	"grand-hotel-backend/models"

	"github.com/go-redis/redis/v8"
)

const (
	activeRoomsKey    = "rooms:active"
	activeRoomsGenKey = "rooms:active:gen"
)

func activeRoomsKeyFor(gen int64) string {
	return activeRoomsKey + ":" + strconv.FormatInt(gen, 10)
}

// Client wraps redis.Client
type Client struct {
	*redis.Client
}

// NewClient returns nil when REDIS_URL is not configured.
func NewClient(cfg config.RedisConfig) *Client {
	if cfg.URL == "" {
		return nil
	}
	opts := &redis.Options{
		Addr:     cfg.URL,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	// accept redis:// URLs as well as host:port
	if parsed, err := redis.ParseURL(cfg.URL); err == nil {
		opts = parsed
		if cfg.Password != "" {
			opts.Password = cfg.Password
		}
	}
	return &Client{Client: redis.NewClient(opts)}
}

// RoomCache keeps the serialized active room list under a key per generation.
// Invalidate bumps the generation; lists written for an older one are never read again and expire.
type RoomCache struct {
	client *Client
	ttl    time.Duration
}

func NewRoomCache(client *Client, ttl time.Duration) *RoomCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RoomCache{client: client, ttl: ttl}
}

// Generation returns 0 until the first invalidation.
func (c *RoomCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, activeRoomsGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetActive reports ok=false on a cache miss.
func (c *RoomCache) GetActive(ctx context.Context, gen int64) ([]models.Room, bool, error) {
	raw, err := c.client.Get(ctx, activeRoomsKeyFor(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rooms []models.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, false, err
	}
	return rooms, true, nil
}

func (c *RoomCache) SetActive(ctx context.Context, gen int64, rooms []models.Room) error {
	raw, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeRoomsKeyFor(gen), raw, c.ttl).Err()
}

func (c *RoomCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, activeRoomsGenKey).Err()
}
