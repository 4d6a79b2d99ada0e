package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shiftrota/config"
)

// Client Redis 客户端封装
// 当前用于三类场景：接口限流、基准班制快照缓存、班制切换事件的 Pub/Sub 通知
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 接口限流 ──

// CheckRateLimit 固定窗口计数限流
// 返回 true 表示放行；窗口内首个请求设置过期时间
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// ── 基准班制快照缓存 ──
//
// 键格式: rota:base:{unitID}:{generation}:{date}
// generation 为单元级代数计数器，事件发生任何增删改即自增，
// 旧代的缓存键不再被读取并随 TTL 过期，避免按日期前缀批量失效。

const (
	baseSnapshotPrefix = "rota:base:"
	generationPrefix   = "rota:gen:"
)

// UnitGeneration 读取单元当前缓存代数（键不存在视为 0）
func (c *Client) UnitGeneration(ctx context.Context, unitID string) (int64, error) {
	n, err := c.rdb.Get(ctx, generationPrefix+unitID).Int64()
	if err == goredis.Nil {
		return 0, nil
	}
	return n, err
}

// BumpUnitGeneration 单元事件发生变更后自增代数，使快照缓存整体失效
func (c *Client) BumpUnitGeneration(ctx context.Context, unitID string) error {
	return c.rdb.Incr(ctx, generationPrefix+unitID).Err()
}

// GetBasePattern 读取基准班制快照；第二返回值表示是否命中
func (c *Client) GetBasePattern(ctx context.Context, unitID string, generation int64, date string) (string, bool, error) {
	key := fmt.Sprintf("%s%s:%d:%s", baseSnapshotPrefix, unitID, generation, date)
	v, err := c.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetBasePattern 写入基准班制快照
func (c *Client) SetBasePattern(ctx context.Context, unitID string, generation int64, date, patternID string, ttl time.Duration) error {
	key := fmt.Sprintf("%s%s:%d:%s", baseSnapshotPrefix, unitID, generation, date)
	return c.rdb.Set(ctx, key, patternID, ttl).Err()
}

// ── 班制切换通知 ──

// UnitChangeMessage 班制切换通知消息体
type UnitChangeMessage struct {
	UnitID    string `json:"unit_id"`
	PatternID string `json:"pattern_id"`
	ChangedAt string `json:"changed_at"`
}

// PublishUnitChange 发布"单元班制已变更"信号，供外部实时推送机制消费
func (c *Client) PublishUnitChange(ctx context.Context, channel string, msg *UnitChangeMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
