package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftrota/internal/dto"
	"shiftrota/internal/model"
	"shiftrota/internal/repository"
)

// ── 解析模块业务错误 ──

var (
	ErrUnitNotFound = errors.New("生产单元不存在")
	// ErrInvalidConfiguration 班制模板数据损坏（周期长度、周索引或时刻格式非法），
	// 属上游数据问题，本核心只暴露、不自愈
	ErrInvalidConfiguration = errors.New("班制模板配置无效")
)

// ResolutionService 时间解析业务接口
// 全部为无副作用的只读操作，可无限并行调用；
// 同一 (单元, 日期, 时, 分) 在无中间变更时的两次解析结果恒等
type ResolutionService interface {
	// GetActivePattern 解析某时刻生效的班制
	GetActivePattern(ctx context.Context, req *dto.ActivePatternRequest) (*dto.ActivePatternResponse, error)
	// GetActiveTeam 解析某小时值班的班组（无人值守返回 team_id=null，非错误）
	GetActiveTeam(ctx context.Context, req *dto.ActiveTeamRequest) (*dto.ActiveTeamResponse, error)
	// GetDaySummary 单日概要：基准班制 + 当日全部切换事件
	GetDaySummary(ctx context.Context, req *dto.DaySummaryRequest) (*dto.DaySummaryResponse, error)
	// ActivePatternAt 供内部调用的裸解析入口
	ActivePatternAt(ctx context.Context, unitID string, at time.Time) (string, error)
}

type resolutionService struct {
	repo   *repository.Repository
	cache  BaseCache // 可为 nil：Redis 缺席时直接回放
	logger *zap.Logger
}

// NewResolutionService 创建 ResolutionService 实例
func NewResolutionService(repo *repository.Repository, cache BaseCache, logger *zap.Logger) ResolutionService {
	return &resolutionService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── 基准班制 ──────────────────────

// basePatternAt 解析 date 当日 00:00 生效的班制
// 即生效时刻严格早于目标零点的最后一个事件；零点整的事件归日内解析
func (s *resolutionService) basePatternAt(ctx context.Context, unitID string, date time.Time) (string, error) {
	dateKey := date.Format(model.DateOnly)

	// 快照缓存命中则跳过回放；缓存出错仅记录，不影响解析
	var generation int64 = -1
	if s.cache != nil {
		gen, err := s.cache.Generation(ctx, unitID)
		if err != nil {
			s.logger.Warn("读取缓存代数失败，退化为全量回放", zap.String("unit_id", unitID), zap.Error(err))
		} else {
			generation = gen
			if cached, ok, err := s.cache.GetBase(ctx, unitID, gen, dateKey); err == nil && ok {
				return cached, nil
			}
		}
	}

	events, err := s.repo.ChangeEvent.ListByUnit(ctx, unitID)
	if err != nil {
		s.logger.Error("查询事件日志失败", zap.String("unit_id", unitID), zap.Error(err))
		return "", err
	}

	base, err := ReplayBasePattern(events, date)
	if err != nil {
		return "", err
	}

	if s.cache != nil && generation >= 0 {
		if err := s.cache.SetBase(ctx, unitID, generation, dateKey, base); err != nil {
			s.logger.Warn("写入基准班制快照失败", zap.String("unit_id", unitID), zap.Error(err))
		}
	}

	return base, nil
}

// activePatternAt 解析 (date, hour, minute) 时刻生效的班制
func (s *resolutionService) activePatternAt(ctx context.Context, unitID string, date time.Time, hour, minute int) (string, error) {
	base, err := s.basePatternAt(ctx, unitID, date)
	if err != nil {
		return "", err
	}

	sameDay, err := s.repo.ChangeEvent.ListOnDate(ctx, unitID, date)
	if err != nil {
		s.logger.Error("查询当日事件失败", zap.String("unit_id", unitID), zap.Error(err))
		return "", err
	}

	return ApplySameDayEvents(base, sameDay, hour, minute), nil
}

// ActivePatternAt 裸解析入口（变更服务与导出服务复用）
func (s *resolutionService) ActivePatternAt(ctx context.Context, unitID string, at time.Time) (string, error) {
	at = at.UTC()
	return s.activePatternAt(ctx, unitID, midnightOf(at), at.Hour(), at.Minute())
}

// ────────────────────── GetActivePattern ──────────────────────

func (s *resolutionService) GetActivePattern(ctx context.Context, req *dto.ActivePatternRequest) (*dto.ActivePatternResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	patternID, err := s.activePatternAt(ctx, req.UnitID, date, req.Hour, req.Minute)
	if err != nil {
		return nil, err
	}

	resp := &dto.ActivePatternResponse{
		UnitID:    req.UnitID,
		Date:      req.Date,
		Hour:      req.Hour,
		Minute:    req.Minute,
		PatternID: patternID,
	}

	if pattern, err := s.repo.Pattern.GetByID(ctx, patternID); err == nil {
		resp.Pattern = &dto.PatternBrief{ID: pattern.PatternID, Name: pattern.Name}
	}

	return resp, nil
}

// ────────────────────── GetActiveTeam ──────────────────────

func (s *resolutionService) GetActiveTeam(ctx context.Context, req *dto.ActiveTeamRequest) (*dto.ActiveTeamResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	pattern, err := s.repo.Pattern.GetByID(ctx, req.PatternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询班制失败", zap.String("pattern_id", req.PatternID), zap.Error(err))
		return nil, err
	}
	if pattern.CycleLengthWeeks < 1 {
		return nil, ErrInvalidConfiguration
	}

	weekIndex, dayOfWeek := ResolveCyclePosition(pattern.AnchorWeekStart, pattern.CycleLengthWeeks, date)

	spans, err := s.repo.Span.ListBySlot(ctx, req.PatternID, weekIndex, dayOfWeek)
	if err != nil {
		s.logger.Error("查询排班时段失败", zap.String("pattern_id", req.PatternID), zap.Error(err))
		return nil, err
	}

	resp := &dto.ActiveTeamResponse{
		PatternID: req.PatternID,
		Date:      req.Date,
		Hour:      req.Hour,
		WeekIndex: weekIndex,
		DayOfWeek: dayOfWeek,
	}

	// 候选时段已按 sort_order 升序，取首个覆盖目标小时者；无命中即无人值守
	for i := range spans {
		span := &spans[i]
		startMinutes, err := ParseClock(span.StartTime)
		if err != nil {
			return nil, ErrInvalidConfiguration
		}
		endMinutes, err := ParseClock(span.EndTime)
		if err != nil {
			return nil, ErrInvalidConfiguration
		}
		if startMinutes == endMinutes {
			return nil, ErrInvalidConfiguration
		}

		if SpanCoversHour(startMinutes, endMinutes, req.Hour) {
			teamID := span.TeamID
			resp.TeamID = &teamID
			if span.Team != nil {
				name := span.Team.Name
				resp.TeamName = &name
			}
			break
		}
	}

	return resp, nil
}

// ────────────────────── GetDaySummary ──────────────────────

func (s *resolutionService) GetDaySummary(ctx context.Context, req *dto.DaySummaryRequest) (*dto.DaySummaryResponse, error) {
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	unit, err := s.repo.Unit.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	base, err := s.basePatternAt(ctx, req.UnitID, date)
	if err != nil {
		return nil, err
	}

	sameDay, err := s.repo.ChangeEvent.ListOnDate(ctx, req.UnitID, date)
	if err != nil {
		s.logger.Error("查询当日事件失败", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, err
	}

	changes := make([]dto.ChangeEventResponse, 0, len(sameDay))
	for i := range sameDay {
		changes = append(changes, *toChangeEventResponse(&sameDay[i], unit))
	}

	return &dto.DaySummaryResponse{
		UnitID:        req.UnitID,
		Date:          req.Date,
		BasePatternID: base,
		Changes:       changes,
	}, nil
}
