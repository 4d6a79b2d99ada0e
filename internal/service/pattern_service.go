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

// ── 班制模块业务错误 ──

var (
	ErrPatternNotFound = errors.New("班制不存在")
	ErrTeamNotFound    = errors.New("班组不存在")
)

// PatternService 班制模板业务接口（本核心只读，模板由外部后台维护）
// 读取时校验模板一致性：周期长度 >= 1、周索引落在周期内、时刻格式合法，
// 不一致即报 ErrInvalidConfiguration，绝不自愈
type PatternService interface {
	GetByID(ctx context.Context, id string) (*dto.PatternResponse, error)
	List(ctx context.Context, includeHidden bool) ([]dto.PatternResponse, error)
	ListSpans(ctx context.Context, patternID string, req *dto.SpanListRequest) ([]dto.SpanResponse, error)
}

type patternService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewPatternService 创建 PatternService 实例
func NewPatternService(repo *repository.Repository, logger *zap.Logger) PatternService {
	return &patternService{repo: repo, logger: logger}
}

// ────────────────────── GetByID ──────────────────────

func (s *patternService) GetByID(ctx context.Context, id string) (*dto.PatternResponse, error) {
	pattern, err := s.repo.Pattern.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询班制失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if pattern.CycleLengthWeeks < 1 {
		return nil, ErrInvalidConfiguration
	}

	return toPatternResponse(pattern), nil
}

// ────────────────────── List ──────────────────────

func (s *patternService) List(ctx context.Context, includeHidden bool) ([]dto.PatternResponse, error) {
	patterns, err := s.repo.Pattern.List(ctx, includeHidden)
	if err != nil {
		s.logger.Error("列出班制失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PatternResponse, 0, len(patterns))
	for i := range patterns {
		result = append(result, *toPatternResponse(&patterns[i]))
	}
	return result, nil
}

// ────────────────────── ListSpans ──────────────────────

func (s *patternService) ListSpans(ctx context.Context, patternID string, req *dto.SpanListRequest) ([]dto.SpanResponse, error) {
	pattern, err := s.repo.Pattern.GetByID(ctx, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}
	if pattern.CycleLengthWeeks < 1 {
		return nil, ErrInvalidConfiguration
	}

	spans, err := s.repo.Span.ListByPattern(ctx, patternID, req.WeekIndex, req.DayOfWeek)
	if err != nil {
		s.logger.Error("查询排班时段失败", zap.String("pattern_id", patternID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SpanResponse, 0, len(spans))
	for i := range spans {
		span := &spans[i]

		// 周索引越界或时刻非法 → 上游数据损坏
		if span.WeekIndex < 0 || span.WeekIndex >= pattern.CycleLengthWeeks {
			return nil, ErrInvalidConfiguration
		}
		if _, err := ParseClock(span.StartTime); err != nil {
			return nil, ErrInvalidConfiguration
		}
		if _, err := ParseClock(span.EndTime); err != nil {
			return nil, ErrInvalidConfiguration
		}

		resp := dto.SpanResponse{
			ID:        span.SpanID,
			PatternID: span.PatternID,
			TeamID:    span.TeamID,
			WeekIndex: span.WeekIndex,
			DayOfWeek: span.DayOfWeek,
			StartTime: span.StartTime,
			EndTime:   span.EndTime,
			SortOrder: span.SortOrder,
		}
		if span.Team != nil {
			resp.TeamName = span.Team.Name
		}
		result = append(result, resp)
	}
	return result, nil
}

// ── 内部辅助方法 ──

func toPatternResponse(p *model.ShiftPattern) *dto.PatternResponse {
	resp := &dto.PatternResponse{
		ID:               p.PatternID,
		Name:             p.Name,
		SystemKey:        p.SystemKey,
		IsHidden:         p.IsHidden,
		CycleLengthWeeks: p.CycleLengthWeeks,
		AnchorWeekStart:  p.AnchorWeekStart.Format(model.DateOnly),
		LightColor:       p.LightColor,
		DarkColor:        p.DarkColor,
		ColorReversed:    p.ColorReversed,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}

	for i := range p.TeamAssignments {
		a := &p.TeamAssignments[i]
		ta := dto.TeamAssignmentResponse{
			TeamID:      a.TeamID,
			DisplayName: a.DisplayName,
			SortOrder:   a.SortOrder,
		}
		if a.Team != nil {
			ta.TeamName = a.Team.Name
		}
		resp.TeamAssignments = append(resp.TeamAssignments, ta)
	}

	return resp
}

// ── 班组模块 ──

// TeamService 班组业务接口（本核心只读）
type TeamService interface {
	GetByID(ctx context.Context, id string) (*dto.TeamResponse, error)
	List(ctx context.Context, includeHidden bool) ([]dto.TeamResponse, error)
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

func (s *teamService) GetByID(ctx context.Context, id string) (*dto.TeamResponse, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询班组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTeamResponse(team), nil
}

func (s *teamService) List(ctx context.Context, includeHidden bool) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx, includeHidden)
	if err != nil {
		s.logger.Error("列出班组失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		result = append(result, *toTeamResponse(&teams[i]))
	}
	return result, nil
}

func toTeamResponse(t *model.ShiftTeam) *dto.TeamResponse {
	return &dto.TeamResponse{
		ID:            t.TeamID,
		Name:          t.Name,
		IsHidden:      t.IsHidden,
		LightColor:    t.LightColor,
		DarkColor:     t.DarkColor,
		ColorReversed: t.ColorReversed,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
}
