package model

// ScheduleSpan 排班时段 — 对应 schedule_spans
// 班制周期内 (week_index, day_of_week) 槽位上的一个重复时间区间，
// EndTime <= StartTime 表示跨午夜时段（覆盖 [start,24:00) ∪ [00:00,end)）。
// 同一槽位允许多个乃至重叠的时段，解析时按 SortOrder 升序取首个命中。
type ScheduleSpan struct {
	SpanID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"span_id"`
	PatternID string `gorm:"type:uuid;not null"                             json:"pattern_id"`
	TeamID    string `gorm:"type:uuid;not null"                             json:"team_id"`
	WeekIndex int    `gorm:"type:smallint;not null"                         json:"week_index"`
	DayOfWeek int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0=周一 … 6=周日
	StartTime string `gorm:"type:varchar(5);not null"                       json:"start_time"`  // "HH:MM"
	EndTime   string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	SortOrder int    `gorm:"not null;default:0"                             json:"sort_order"`
	BaseModel

	// 关联
	Team *ShiftTeam `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

func (ScheduleSpan) TableName() string { return "schedule_spans" }
