package model

import "time"

// ShiftPattern 班制（轮班模板）— 对应 shift_patterns
// 周排班按 CycleLengthWeeks 周为一个周期循环，AnchorWeekStart 所在周为第 0 周
type ShiftPattern struct {
	PatternID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pattern_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	SystemKey        *string   `gorm:"type:varchar(50)"                               json:"system_key,omitempty"` // 系统保留班制（如 unmanned），不可删除
	IsHidden         bool      `gorm:"not null;default:false"                         json:"is_hidden"`
	CycleLengthWeeks int       `gorm:"type:smallint;not null;default:1"               json:"cycle_length_weeks"`
	AnchorWeekStart  time.Time `gorm:"type:date;not null"                             json:"anchor_week_start"`
	LightColor       string    `gorm:"type:varchar(20);not null;default:'#FFFFFF'"    json:"light_color"`
	DarkColor        string    `gorm:"type:varchar(20);not null;default:'#000000'"    json:"dark_color"`
	ColorReversed    bool      `gorm:"not null;default:false"                         json:"color_reversed"`
	BaseModel

	// 关联
	TeamAssignments []PatternTeamAssignment `gorm:"foreignKey:PatternID" json:"team_assignments,omitempty"`
}

func (ShiftPattern) TableName() string { return "shift_patterns" }

// ShiftTeam 班组 — 对应 shift_teams
type ShiftTeam struct {
	TeamID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name          string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsHidden      bool   `gorm:"not null;default:false"                         json:"is_hidden"`
	LightColor    string `gorm:"type:varchar(20);not null;default:'#FFFFFF'"    json:"light_color"`
	DarkColor     string `gorm:"type:varchar(20);not null;default:'#000000'"    json:"dark_color"`
	ColorReversed bool   `gorm:"not null;default:false"                         json:"color_reversed"`
	BaseModel
}

func (ShiftTeam) TableName() string { return "shift_teams" }

// PatternTeamAssignment 班制-班组关联 — 对应 pattern_team_assignments
// 仅用于展示：标签覆盖与排序，复合主键 (pattern_id, team_id)
type PatternTeamAssignment struct {
	PatternID   string  `gorm:"type:uuid;primaryKey" json:"pattern_id"`
	TeamID      string  `gorm:"type:uuid;primaryKey" json:"team_id"`
	DisplayName *string `gorm:"type:varchar(100)"    json:"display_name,omitempty"`
	SortOrder   int     `gorm:"not null;default:0"   json:"sort_order"`
	BaseModel

	// 关联
	Team *ShiftTeam `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

func (PatternTeamAssignment) TableName() string { return "pattern_team_assignments" }
