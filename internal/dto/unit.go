package dto

// CreateUnitRequest 创建生产单元请求
// 创建时同步写入可用班制与初始事件（投运日 00:00 的保留事件）
type CreateUnitRequest struct {
	Name               string   `json:"name" binding:"required,max=100"`
	CommissionedDate   string   `json:"commissioned_date" binding:"required"` // "2006-01-02"
	InitialPatternID   string   `json:"initial_pattern_id" binding:"required,uuid"`
	EligiblePatternIDs []string `json:"eligible_pattern_ids" binding:"omitempty,dive,uuid"`
	SortOrder          int      `json:"sort_order"`
}

// UnitResponse 单元详情响应
type UnitResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	IsHidden         bool   `json:"is_hidden"`
	SortOrder        int    `json:"sort_order"`
	CommissionedDate string `json:"commissioned_date"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

// EligiblePatternResponse 单元可用班制响应
type EligiblePatternResponse struct {
	PatternID string `json:"pattern_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"` // 派生缓存：当前生效班制标记
	SortOrder int    `json:"sort_order"`
}
