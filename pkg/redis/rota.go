package redis

import (
	"context"
	"time"
)

// RotaCache 基准班制快照缓存适配器（实现解析引擎的 BaseCache 接口）
type RotaCache struct {
	client *Client
	ttl    time.Duration
}

// NewRotaCache 创建 RotaCache
func NewRotaCache(client *Client, ttl time.Duration) *RotaCache {
	return &RotaCache{client: client, ttl: ttl}
}

func (c *RotaCache) Generation(ctx context.Context, unitID string) (int64, error) {
	return c.client.UnitGeneration(ctx, unitID)
}

func (c *RotaCache) GetBase(ctx context.Context, unitID string, generation int64, date string) (string, bool, error) {
	return c.client.GetBasePattern(ctx, unitID, generation, date)
}

func (c *RotaCache) SetBase(ctx context.Context, unitID string, generation int64, date, patternID string) error {
	return c.client.SetBasePattern(ctx, unitID, generation, date, patternID, c.ttl)
}

func (c *RotaCache) Bump(ctx context.Context, unitID string) error {
	return c.client.BumpUnitGeneration(ctx, unitID)
}

// RotaNotifier 班制变更通知适配器（实现变更服务的 Notifier 接口）
type RotaNotifier struct {
	client  *Client
	channel string
}

// NewRotaNotifier 创建 RotaNotifier
func NewRotaNotifier(client *Client, channel string) *RotaNotifier {
	return &RotaNotifier{client: client, channel: channel}
}

func (n *RotaNotifier) UnitPatternChanged(ctx context.Context, unitID, patternID string, changedAt time.Time) error {
	return n.client.PublishUnitChange(ctx, n.channel, &UnitChangeMessage{
		UnitID:    unitID,
		PatternID: patternID,
		ChangedAt: changedAt.Format(time.RFC3339),
	})
}
