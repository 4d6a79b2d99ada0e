package model

import "time"

// Unit 生产单元 — 对应 units
// CommissionedDate 为投运日期：该日 00:00 是单元初始事件的保留时刻
type Unit struct {
	UnitID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"unit_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	IsHidden         bool      `gorm:"not null;default:false"                         json:"is_hidden"`
	SortOrder        int       `gorm:"not null;default:0"                             json:"sort_order"`
	CommissionedDate time.Time `gorm:"type:date;not null"                             json:"commissioned_date"`
	BaseModel
}

func (Unit) TableName() string { return "units" }

// UnitPatternEligibility 单元可用班制 — 对应 unit_pattern_eligibilities
// IsActive 是"当前班制"的派生缓存，仅由变更服务在事件增删改后同步重写，
// 永远不是独立事实来源（事实来源是事件回放）。
type UnitPatternEligibility struct {
	UnitID    string `gorm:"type:uuid;primaryKey" json:"unit_id"`
	PatternID string `gorm:"type:uuid;primaryKey" json:"pattern_id"`
	IsActive  bool   `gorm:"not null;default:false" json:"is_active"`
	SortOrder int    `gorm:"not null;default:0"     json:"sort_order"`
	BaseModel

	// 关联
	Pattern *ShiftPattern `gorm:"foreignKey:PatternID;references:PatternID" json:"pattern,omitempty"`
}

func (UnitPatternEligibility) TableName() string { return "unit_pattern_eligibilities" }
