package service

import (
	"errors"
	"strconv"
	"time"

	"shiftrota/internal/model"
)

// ── 周期解析纯函数 ──
//
// 本文件内的函数均无副作用、不访问存储，时间一律按 UTC 处理。

var (
	ErrInvalidDate  = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidClock = errors.New("时刻格式无效，应为 HH:MM")
	// ErrNoHistory 单元事件日志为空：初始事件缺失，属上游数据损坏
	ErrNoHistory = errors.New("单元无任何班制切换事件")
)

// minutesPerDay 一天的分钟数
const minutesPerDay = 24 * 60

// ParseDate 解析 "YYYY-MM-DD" 为 UTC 零点时刻
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(model.DateOnly, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseClock 解析 "HH:MM" 为自午夜起的分钟数
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidClock
	}
	hour, err := strconv.Atoi(s[0:2])
	if err != nil {
		return 0, ErrInvalidClock
	}
	minute, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, ErrInvalidClock
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidClock
	}
	return hour*60 + minute, nil
}

// midnightOf 归一化到当日 UTC 零点
func midnightOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// floorDiv 向下取整除法（负数偏移也落在正确的周）
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ResolveCyclePosition 计算目标日期在班制周期内的位置
// 返回 weekIndex ∈ [0, cycleLengthWeeks) 与 dayOfWeek（0=周一 … 6=周日）
// 前置条件 cycleLengthWeeks >= 1，由模板读取层保证
func ResolveCyclePosition(anchorWeekStart time.Time, cycleLengthWeeks int, target time.Time) (weekIndex, dayOfWeek int) {
	daysSinceAnchor := int(midnightOf(target).Sub(midnightOf(anchorWeekStart)).Hours() / 24)
	weeksSinceAnchor := floorDiv(daysSinceAnchor, 7)
	weekIndex = ((weeksSinceAnchor % cycleLengthWeeks) + cycleLengthWeeks) % cycleLengthWeeks
	dayOfWeek = (int(target.Weekday()) + 6) % 7
	return weekIndex, dayOfWeek
}

// linearOverlap 半开区间 [a1,a2) 与 [b1,b2) 是否相交
func linearOverlap(a1, a2, b1, b2 int) bool {
	return max(a1, b1) < min(a2, b2)
}

// SpanCoversHour 排班时段是否覆盖目标小时 [hour:00, hour+1:00)
// endMinutes <= startMinutes 视为跨午夜时段 [start,1440) ∪ [0,end)
func SpanCoversHour(startMinutes, endMinutes, hour int) bool {
	winStart := hour * 60
	winEnd := winStart + 60

	if endMinutes <= startMinutes {
		return linearOverlap(startMinutes, minutesPerDay, winStart, winEnd) ||
			linearOverlap(0, endMinutes, winStart, winEnd)
	}
	return linearOverlap(startMinutes, endMinutes, winStart, winEnd)
}

// ── 事件日志回放 ──

// ReplayBasePattern 回放事件日志，返回 date 当日 00:00 的基准班制
// events 须已按生效时刻升序排列；正好落在零点的事件归当日的日内解析，不计入基准。
// 目标日早于全部事件时返回首个事件（初始事件）的班制。
func ReplayBasePattern(events []model.ShiftChangeEvent, date time.Time) (string, error) {
	if len(events) == 0 {
		return "", ErrNoHistory
	}

	midnight := midnightOf(date)
	result := ""
	for i := range events {
		if !events[i].EffectiveAt().Before(midnight) {
			break
		}
		result = events[i].NewPatternID
	}

	if result == "" {
		result = events[0].NewPatternID
	}
	return result, nil
}

// ApplySameDayEvents 在基准班制之上应用当日事件
// sameDay 须已按 (hour, minute) 升序排列；(hour, minute) 按字典序 <= 目标时刻的事件依次生效
func ApplySameDayEvents(base string, sameDay []model.ShiftChangeEvent, hour, minute int) string {
	result := base
	for i := range sameDay {
		e := &sameDay[i]
		if e.EffectiveHour < hour || (e.EffectiveHour == hour && e.EffectiveMinute <= minute) {
			result = e.NewPatternID
		}
	}
	return result
}
