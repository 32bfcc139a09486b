package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultKey 最近一次运行状态的缓存键
const DefaultKey = "caredoc:expiry:last-run"

// RunStatus 最近一次扫描的结果快照
// A single key, overwritten on every run and expired by TTL. This is
// operational visibility only; it is not a notification history and no
// dedup decisions are made from it.
type RunStatus struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	RowCount          int       `json:"row_count"`
	TotalExpired      int       `json:"total_expired"`
	TotalExpiringSoon int       `json:"total_expiring_soon"`
	NotificationSent  bool      `json:"notification_sent"`
	DeliveryError     string    `json:"delivery_error,omitempty"`
}

// Cache Redis 运行状态缓存
type Cache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache 创建状态缓存
func NewCache(client *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *Cache {
	if key == "" {
		key = DefaultKey
	}
	return &Cache{client: client, key: key, ttl: ttl, logger: logger}
}

// Store overwrites the last-run status.
func (c *Cache) Store(ctx context.Context, status *RunStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal run status: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store run status: %w", err)
	}
	c.logger.Debug("Stored run status",
		zap.String("run_id", status.RunID),
		zap.String("key", c.key),
	)
	return nil
}

// Load returns the last stored status, or nil if none is cached.
func (c *Cache) Load(ctx context.Context) (*RunStatus, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run status: %w", err)
	}

	var status RunStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run status: %w", err)
	}
	return &status, nil
}
