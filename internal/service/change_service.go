package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftrota/internal/dto"
	"shiftrota/internal/model"
	"shiftrota/internal/repository"
)

// ── 变更模块业务错误 ──

var (
	ErrEventNotFound = errors.New("切换事件不存在")
	// ErrInvalidPattern 目标班制不在单元的可用班制集合内
	ErrInvalidPattern = errors.New("该单元不可使用此班制")
	// ErrChangeConflict 目标时刻已存在切换事件
	ErrChangeConflict = errors.New("该时刻已存在切换事件")
	// ErrGenesisProtected 单元投运时刻的初始事件受保护：不可删除、不可挪移、不可被占用
	ErrGenesisProtected = errors.New("初始事件受保护，不可在该时刻操作")
)

// ChangeService 班制切换变更业务接口
// 同一单元的变更串行执行（按单元互斥锁），不同单元完全并行；
// 每次成功变更后同步重算 is_active 缓存并发出外部通知，绝不延迟重算
type ChangeService interface {
	// ApplyActiveShift 目标时刻已有事件则改写其目标班制，否则新增事件
	ApplyActiveShift(ctx context.Context, unitID string, req *dto.ActiveShiftPatchRequest, callerID string) (*dto.ChangeEventResponse, error)
	// UpdateChange 改写既有事件（时刻和/或目标班制），按新增同等规则重新校验
	UpdateChange(ctx context.Context, eventID string, req *dto.UpdateChangeRequest, callerID string) (*dto.ChangeEventResponse, error)
	// DeleteChange 删除事件；初始事件不可删除
	DeleteChange(ctx context.Context, eventID string, callerID string) error
	// ListChanges 单元全部事件，按生效时刻升序
	ListChanges(ctx context.Context, unitID string) ([]dto.ChangeEventResponse, error)
}

type changeService struct {
	repo     *repository.Repository
	cache    BaseCache // 可为 nil
	notifier Notifier  // 可为 nil
	logger   *zap.Logger

	locks sync.Map         // unitID → *sync.Mutex，单写者串行化
	now   func() time.Time // 测试注入
}

// NewChangeService 创建 ChangeService 实例
func NewChangeService(repo *repository.Repository, cache BaseCache, notifier Notifier, logger *zap.Logger) ChangeService {
	return &changeService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// lockUnit 获取单元级互斥锁，返回解锁函数
// 避免全局大锁：不相关单元的变更互不阻塞
func (s *changeService) lockUnit(unitID string) func() {
	v, _ := s.locks.LoadOrStore(unitID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ────────────────────── ApplyActiveShift ──────────────────────

func (s *changeService) ApplyActiveShift(ctx context.Context, unitID string, req *dto.ActiveShiftPatchRequest, callerID string) (*dto.ChangeEventResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	unlock := s.lockUnit(unitID)
	defer unlock()

	unit, err := s.repo.Unit.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	// 校验目标班制在可用集合内
	if err := s.checkEligibility(ctx, unitID, req.PatternID); err != nil {
		return nil, err
	}

	// 目标时刻已有事件 → 等价于改写该事件的目标班制
	events, err := s.repo.ChangeEvent.ListOnDate(ctx, unitID, date)
	if err != nil {
		return nil, err
	}
	for i := range events {
		e := &events[i]
		if e.EffectiveHour == req.Hour && e.EffectiveMinute == req.Minute {
			return s.retargetLocked(ctx, unit, e, req.PatternID, callerID)
		}
	}

	return s.addLocked(ctx, unit, date, req.Hour, req.Minute, req.PatternID, callerID)
}

// addLocked 新增事件（调用方已持有单元锁）
func (s *changeService) addLocked(ctx context.Context, unit *model.Unit, date time.Time, hour, minute int, patternID, callerID string) (*dto.ChangeEventResponse, error) {
	// 初始事件时刻保留：仅单元创建流程可写入
	if isGenesisInstant(unit, date, hour, minute) {
		return nil, ErrGenesisProtected
	}

	// 唯一时刻校验（单元锁内，无并发窗口）
	exists, err := s.repo.ChangeEvent.ExistsAtInstant(ctx, unit.UnitID, date, hour, minute, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrChangeConflict
	}

	// old_pattern_id 取事件写入前一瞬的解析结果，仅作审计
	oldPattern, err := s.replayAt(ctx, unit.UnitID, date, hour, minute, "")
	if err != nil && !errors.Is(err, ErrNoHistory) {
		return nil, err
	}

	event := &model.ShiftChangeEvent{
		UnitID:          unit.UnitID,
		NewPatternID:    patternID,
		EffectiveDate:   date,
		EffectiveHour:   hour,
		EffectiveMinute: minute,
	}
	if oldPattern != "" {
		event.OldPatternID = &oldPattern
	}
	event.CreatedBy = &callerID
	event.UpdatedBy = &callerID

	if err := s.repo.ChangeEvent.Create(ctx, event); err != nil {
		s.logger.Error("写入切换事件失败", zap.String("unit_id", unit.UnitID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增班制切换事件",
		zap.String("unit_id", unit.UnitID),
		zap.String("new_pattern_id", patternID),
		zap.String("effective_date", date.Format(model.DateOnly)),
		zap.Int("hour", hour),
		zap.Int("minute", minute),
	)

	s.refreshAfterMutation(ctx, unit.UnitID, event.EffectiveAt())
	return toChangeEventResponse(event, unit), nil
}

// retargetLocked 仅改写既有事件的目标班制（调用方已持有单元锁）
// 初始事件允许改写目标班制（等价于修订单元的初始班制），但时刻不可挪移
func (s *changeService) retargetLocked(ctx context.Context, unit *model.Unit, event *model.ShiftChangeEvent, patternID, callerID string) (*dto.ChangeEventResponse, error) {
	event.NewPatternID = patternID
	event.UpdatedBy = &callerID

	if err := s.repo.ChangeEvent.Update(ctx, event); err != nil {
		s.logger.Error("改写切换事件失败", zap.String("event_id", event.EventID), zap.Error(err))
		return nil, err
	}

	s.refreshAfterMutation(ctx, unit.UnitID, event.EffectiveAt())
	return toChangeEventResponse(event, unit), nil
}

// ────────────────────── UpdateChange ──────────────────────

func (s *changeService) UpdateChange(ctx context.Context, eventID string, req *dto.UpdateChangeRequest, callerID string) (*dto.ChangeEventResponse, error) {
	event, err := s.repo.ChangeEvent.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	unlock := s.lockUnit(event.UnitID)
	defer unlock()

	// 锁内重读，避免拿锁前的快照失效
	event, err = s.repo.ChangeEvent.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	unit, err := s.repo.Unit.GetByID(ctx, event.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	// 事件的新身份：未提供的字段沿用原值
	newDate := event.EffectiveDate
	if req.Date != nil {
		if newDate, err = ParseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	newHour := event.EffectiveHour
	if req.Hour != nil {
		newHour = *req.Hour
	}
	newMinute := event.EffectiveMinute
	if req.Minute != nil {
		newMinute = *req.Minute
	}
	newPattern := event.NewPatternID
	if req.PatternID != nil {
		newPattern = *req.PatternID
	}

	wasGenesis := isGenesisInstant(unit, event.EffectiveDate, event.EffectiveHour, event.EffectiveMinute)
	willBeGenesis := isGenesisInstant(unit, newDate, newHour, newMinute)

	// 初始事件不可挪移；普通事件不可占用初始时刻
	if wasGenesis && !willBeGenesis {
		return nil, ErrGenesisProtected
	}
	if !wasGenesis && willBeGenesis {
		return nil, ErrGenesisProtected
	}

	if err := s.checkEligibility(ctx, event.UnitID, newPattern); err != nil {
		return nil, err
	}

	// 唯一时刻校验，排除自身
	exists, err := s.repo.ChangeEvent.ExistsAtInstant(ctx, event.UnitID, newDate, newHour, newMinute, event.EventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrChangeConflict
	}

	// 审计字段按新时刻重算（回放时排除本事件自身）
	oldPattern, err := s.replayAt(ctx, event.UnitID, newDate, newHour, newMinute, event.EventID)
	if err != nil && !errors.Is(err, ErrNoHistory) {
		return nil, err
	}

	prevEffectiveAt := event.EffectiveAt()

	event.EffectiveDate = newDate
	event.EffectiveHour = newHour
	event.EffectiveMinute = newMinute
	event.NewPatternID = newPattern
	if oldPattern != "" {
		event.OldPatternID = &oldPattern
	} else {
		event.OldPatternID = nil
	}
	event.UpdatedBy = &callerID

	if err := s.repo.ChangeEvent.Update(ctx, event); err != nil {
		s.logger.Error("改写切换事件失败", zap.String("event_id", eventID), zap.Error(err))
		return nil, err
	}

	// 新旧时刻任一不晚于当前时间都可能改变已解析状态
	earliest := event.EffectiveAt()
	if prevEffectiveAt.Before(earliest) {
		earliest = prevEffectiveAt
	}
	s.refreshAfterMutation(ctx, event.UnitID, earliest)

	return toChangeEventResponse(event, unit), nil
}

// ────────────────────── DeleteChange ──────────────────────

func (s *changeService) DeleteChange(ctx context.Context, eventID string, callerID string) error {
	event, err := s.repo.ChangeEvent.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	unlock := s.lockUnit(event.UnitID)
	defer unlock()

	event, err = s.repo.ChangeEvent.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	unit, err := s.repo.Unit.GetByID(ctx, event.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return err
	}

	// 初始事件即使是仅存事件也不可删除
	if isGenesisInstant(unit, event.EffectiveDate, event.EffectiveHour, event.EffectiveMinute) {
		return ErrGenesisProtected
	}

	if err := s.repo.ChangeEvent.Delete(ctx, eventID); err != nil {
		s.logger.Error("删除切换事件失败", zap.String("event_id", eventID), zap.Error(err))
		return err
	}

	s.logger.Info("删除班制切换事件",
		zap.String("unit_id", event.UnitID),
		zap.String("event_id", eventID),
		zap.String("caller_id", callerID),
	)

	s.refreshAfterMutation(ctx, event.UnitID, event.EffectiveAt())
	return nil
}

// ────────────────────── ListChanges ──────────────────────

func (s *changeService) ListChanges(ctx context.Context, unitID string) ([]dto.ChangeEventResponse, error) {
	unit, err := s.repo.Unit.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	events, err := s.repo.ChangeEvent.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ChangeEventResponse, 0, len(events))
	for i := range events {
		result = append(result, *toChangeEventResponse(&events[i], unit))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *changeService) checkEligibility(ctx context.Context, unitID, patternID string) error {
	eligible, err := s.repo.Eligibility.Exists(ctx, unitID, patternID)
	if err != nil {
		return err
	}
	if !eligible {
		return ErrInvalidPattern
	}
	return nil
}

// replayAt 回放单元事件日志，返回 (date, hour, minute) 时刻的生效班制
// excludeID 非空时排除指定事件（用于改写场景下的审计字段重算）
func (s *changeService) replayAt(ctx context.Context, unitID string, date time.Time, hour, minute int, excludeID string) (string, error) {
	events, err := s.repo.ChangeEvent.ListByUnit(ctx, unitID)
	if err != nil {
		return "", err
	}

	if excludeID != "" {
		filtered := events[:0]
		for i := range events {
			if events[i].EventID != excludeID {
				filtered = append(filtered, events[i])
			}
		}
		events = filtered
	}

	base, err := ReplayBasePattern(events, date)
	if err != nil {
		return "", err
	}

	dateKey := date.Format(model.DateOnly)
	sameDay := make([]model.ShiftChangeEvent, 0, 4)
	for i := range events {
		if events[i].EffectiveDate.Format(model.DateOnly) == dateKey {
			sameDay = append(sameDay, events[i])
		}
	}

	return ApplySameDayEvents(base, sameDay, hour, minute), nil
}

// refreshAfterMutation 变更成功后的同步收尾：
// 快照缓存整体失效；事件时刻不晚于当前时间时重算 is_active 缓存并发出外部通知。
// 收尾失败只记录日志，不回滚已完成的事件变更（缓存可由下一次变更自愈）。
func (s *changeService) refreshAfterMutation(ctx context.Context, unitID string, effectiveAt time.Time) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx, unitID); err != nil {
			s.logger.Warn("快照缓存失效操作失败", zap.String("unit_id", unitID), zap.Error(err))
		}
	}

	now := s.now()
	if effectiveAt.After(now) {
		return
	}

	current, err := s.replayAt(ctx, unitID, midnightOf(now), now.Hour(), now.Minute(), "")
	if err != nil {
		s.logger.Error("重算当前班制失败", zap.String("unit_id", unitID), zap.Error(err))
		return
	}

	if err := s.repo.Eligibility.SetActive(ctx, unitID, current); err != nil {
		s.logger.Error("重写 is_active 缓存失败", zap.String("unit_id", unitID), zap.Error(err))
		return
	}

	if s.notifier != nil {
		if err := s.notifier.UnitPatternChanged(ctx, unitID, current, now); err != nil {
			s.logger.Warn("发布班制变更通知失败", zap.String("unit_id", unitID), zap.Error(err))
		}
	}
}

// isGenesisInstant 判断 (date, hour, minute) 是否为单元的初始事件保留时刻
func isGenesisInstant(unit *model.Unit, date time.Time, hour, minute int) bool {
	return hour == 0 && minute == 0 &&
		date.Format(model.DateOnly) == unit.CommissionedDate.Format(model.DateOnly)
}

// toChangeEventResponse 模型 → 响应转换
func toChangeEventResponse(e *model.ShiftChangeEvent, unit *model.Unit) *dto.ChangeEventResponse {
	return &dto.ChangeEventResponse{
		ID:              e.EventID,
		UnitID:          e.UnitID,
		OldPatternID:    e.OldPatternID,
		NewPatternID:    e.NewPatternID,
		EffectiveDate:   e.EffectiveDate.Format(model.DateOnly),
		EffectiveHour:   e.EffectiveHour,
		EffectiveMinute: e.EffectiveMinute,
		IsGenesis:       isGenesisInstant(unit, e.EffectiveDate, e.EffectiveHour, e.EffectiveMinute),
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
}
