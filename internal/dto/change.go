package dto

// ActiveShiftPatchRequest 班制切换请求（PATCH /units/:id/active-shift）
// 指定时刻已存在事件时等价于改写该事件的目标班制，否则新增事件
type ActiveShiftPatchRequest struct {
	Date      string `json:"date" binding:"required"` // "2006-01-02"
	Hour      int    `json:"hour" binding:"min=0,max=23"`
	Minute    int    `json:"minute" binding:"min=0,max=59"`
	PatternID string `json:"pattern_id" binding:"required,uuid"`
}

// UpdateChangeRequest 改写既有切换事件请求
// 所有字段可选；提供的字段构成事件的新身份，按新增同等规则重新校验
type UpdateChangeRequest struct {
	Date      *string `json:"date,omitempty"`
	Hour      *int    `json:"hour,omitempty" binding:"omitempty,min=0,max=23"`
	Minute    *int    `json:"minute,omitempty" binding:"omitempty,min=0,max=59"`
	PatternID *string `json:"pattern_id,omitempty" binding:"omitempty,uuid"`
}

// ChangeEventResponse 切换事件响应
type ChangeEventResponse struct {
	ID              string  `json:"id"`
	UnitID          string  `json:"unit_id"`
	OldPatternID    *string `json:"old_pattern_id,omitempty"` // 仅审计用途
	NewPatternID    string  `json:"new_pattern_id"`
	EffectiveDate   string  `json:"effective_date"`
	EffectiveHour   int     `json:"effective_hour"`
	EffectiveMinute int     `json:"effective_minute"`
	IsGenesis       bool    `json:"is_genesis"` // 单元投运时刻的保留事件，不可删除
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
