package service

import (
	"context"
	"time"
)

// Notifier 对外通知接口
// 任何影响单元已解析状态的变更发生后触发，投递机制（WebSocket、MQ 等）由外部系统承担
type Notifier interface {
	UnitPatternChanged(ctx context.Context, unitID, patternID string, changedAt time.Time) error
}

// BaseCache 基准班制快照缓存接口
// 纯优化：缓存"某日 00:00 的基准班制"，任何事件增删改后按单元整体失效（代数自增），
// 缓存不可用或未命中时退化为全量回放，解析语义不变
type BaseCache interface {
	Generation(ctx context.Context, unitID string) (int64, error)
	GetBase(ctx context.Context, unitID string, generation int64, date string) (string, bool, error)
	SetBase(ctx context.Context, unitID string, generation int64, date, patternID string) error
	Bump(ctx context.Context, unitID string) error
}
