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

// UnitService 生产单元业务接口
// 创建单元是初始事件的唯一写入入口：单元、可用班制与投运日 00:00 的
// 初始事件在同一事务内落库，保证任何单元的事件日志都非空
type UnitService interface {
	Create(ctx context.Context, req *dto.CreateUnitRequest, callerID string) (*dto.UnitResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UnitResponse, error)
	List(ctx context.Context, includeHidden bool) ([]dto.UnitResponse, error)
	// ListEligiblePatterns 单元可用班制，含派生的 is_active 标记
	ListEligiblePatterns(ctx context.Context, unitID string) ([]dto.EligiblePatternResponse, error)
}

type unitService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUnitService 创建 UnitService 实例
func NewUnitService(repo *repository.Repository, logger *zap.Logger) UnitService {
	return &unitService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *unitService) Create(ctx context.Context, req *dto.CreateUnitRequest, callerID string) (*dto.UnitResponse, error) {
	commissioned, err := ParseDate(req.CommissionedDate)
	if err != nil {
		return nil, err
	}

	// 初始班制必须真实存在
	if _, err := s.repo.Pattern.GetByID(ctx, req.InitialPatternID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	// 可用班制集合必须包含初始班制
	patternIDs := req.EligiblePatternIDs
	found := false
	for _, id := range patternIDs {
		if id == req.InitialPatternID {
			found = true
			break
		}
	}
	if !found {
		patternIDs = append(patternIDs, req.InitialPatternID)
	}

	unit := &model.Unit{
		Name:             req.Name,
		SortOrder:        req.SortOrder,
		CommissionedDate: commissioned,
	}
	unit.CreatedBy = &callerID
	unit.UpdatedBy = &callerID

	eligibilities := make([]model.UnitPatternEligibility, 0, len(patternIDs))
	for i, id := range patternIDs {
		row := model.UnitPatternEligibility{
			PatternID: id,
			IsActive:  id == req.InitialPatternID, // 创建即生效，缓存无需另行重算
			SortOrder: i,
		}
		row.CreatedBy = &callerID
		row.UpdatedBy = &callerID
		eligibilities = append(eligibilities, row)
	}

	// 初始事件：投运日 00:00 的保留时刻，此处是唯一写入路径
	genesis := &model.ShiftChangeEvent{
		NewPatternID:    req.InitialPatternID,
		EffectiveDate:   commissioned,
		EffectiveHour:   0,
		EffectiveMinute: 0,
	}
	genesis.CreatedBy = &callerID
	genesis.UpdatedBy = &callerID

	if err := s.repo.Unit.CreateWithGenesis(ctx, unit, eligibilities, genesis); err != nil {
		s.logger.Error("创建单元失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建生产单元",
		zap.String("unit_id", unit.UnitID),
		zap.String("name", unit.Name),
		zap.String("initial_pattern_id", req.InitialPatternID),
	)

	return toUnitResponse(unit), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *unitService) GetByID(ctx context.Context, id string) (*dto.UnitResponse, error) {
	unit, err := s.repo.Unit.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUnitResponse(unit), nil
}

// ────────────────────── List ──────────────────────

func (s *unitService) List(ctx context.Context, includeHidden bool) ([]dto.UnitResponse, error) {
	units, err := s.repo.Unit.List(ctx, includeHidden)
	if err != nil {
		s.logger.Error("列出单元失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		result = append(result, *toUnitResponse(&units[i]))
	}
	return result, nil
}

// ────────────────────── ListEligiblePatterns ──────────────────────

func (s *unitService) ListEligiblePatterns(ctx context.Context, unitID string) ([]dto.EligiblePatternResponse, error) {
	if _, err := s.repo.Unit.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	rows, err := s.repo.Eligibility.ListByUnit(ctx, unitID)
	if err != nil {
		s.logger.Error("查询可用班制失败", zap.String("unit_id", unitID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EligiblePatternResponse, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		resp := dto.EligiblePatternResponse{
			PatternID: row.PatternID,
			IsActive:  row.IsActive,
			SortOrder: row.SortOrder,
		}
		if row.Pattern != nil {
			resp.Name = row.Pattern.Name
		}
		result = append(result, resp)
	}
	return result, nil
}

// ── 内部辅助方法 ──

func toUnitResponse(u *model.Unit) *dto.UnitResponse {
	return &dto.UnitResponse{
		ID:               u.UnitID,
		Name:             u.Name,
		IsHidden:         u.IsHidden,
		SortOrder:        u.SortOrder,
		CommissionedDate: u.CommissionedDate.Format(model.DateOnly),
		CreatedAt:        u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        u.UpdatedAt.Format(time.RFC3339),
	}
}
