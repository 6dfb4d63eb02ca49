package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tartanair/va-backend/internal/types"
)

// RedisClientInterface defines the Redis operations used by our client
type RedisClientInterface interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// Client caches the most recent position of each active flight so the
// live fleet view can avoid a per-flight database query.
type Client struct {
	client RedisClientInterface
}

// New creates a new Redis client
func New(addr string) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// NewWithClient creates a new Redis client with a custom RedisClientInterface (useful for testing)
func NewWithClient(client RedisClientInterface) *Client {
	return &Client{client: client}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

func lastPositionKey(flightID string) string {
	return fmt.Sprintf("lastpos:%s", flightID)
}

// StoreLastPosition caches the latest position for a flight
func (c *Client) StoreLastPosition(ctx context.Context, pos *types.Position) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	return c.client.Set(ctx, lastPositionKey(pos.FlightID), data, 24*time.Hour).Err()
}

// GetLastPosition retrieves the cached latest position for a flight.
// Returns nil on a cache miss.
func (c *Client) GetLastPosition(ctx context.Context, flightID string) (*types.Position, error) {
	data, err := c.client.Get(ctx, lastPositionKey(flightID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position data: %w", err)
	}

	var pos types.Position
	if err := json.Unmarshal(data, &pos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position data: %w", err)
	}
	return &pos, nil
}

// DeleteLastPosition drops the cached position for a flight
func (c *Client) DeleteLastPosition(ctx context.Context, flightID string) error {
	return c.client.Del(ctx, lastPositionKey(flightID)).Err()
}
