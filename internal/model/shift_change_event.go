package model

import "time"

// ShiftChangeEvent 班制切换事件 — 对应 shift_change_events
// 按单元追加的覆写历史：同一单元内 (effective_date, effective_hour, effective_minute)
// 唯一，不允许两个事件声明同一时刻。
// OldPatternID 仅作审计记录，解析始终以历史回放为准。
type ShiftChangeEvent struct {
	EventID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"                      json:"event_id"`
	UnitID          string    `gorm:"type:uuid;not null;uniqueIndex:uq_change_events_instant"             json:"unit_id"`
	OldPatternID    *string   `gorm:"type:uuid"                                                           json:"old_pattern_id,omitempty"`
	NewPatternID    string    `gorm:"type:uuid;not null"                                                  json:"new_pattern_id"`
	EffectiveDate   time.Time `gorm:"type:date;not null;uniqueIndex:uq_change_events_instant"             json:"effective_date"`
	EffectiveHour   int       `gorm:"type:smallint;not null;uniqueIndex:uq_change_events_instant"         json:"effective_hour"`
	EffectiveMinute int       `gorm:"type:smallint;not null;uniqueIndex:uq_change_events_instant"         json:"effective_minute"`
	BaseModel
}

func (ShiftChangeEvent) TableName() string { return "shift_change_events" }

// EffectiveAt 事件的生效时刻（UTC，用于排序与比较）
func (e *ShiftChangeEvent) EffectiveAt() time.Time {
	d := e.EffectiveDate
	return time.Date(d.Year(), d.Month(), d.Day(), e.EffectiveHour, e.EffectiveMinute, 0, 0, time.UTC)
}

// SameInstant 判断事件是否生效于指定时刻
func (e *ShiftChangeEvent) SameInstant(date time.Time, hour, minute int) bool {
	return e.EffectiveDate.Format(DateOnly) == date.Format(DateOnly) &&
		e.EffectiveHour == hour &&
		e.EffectiveMinute == minute
}
