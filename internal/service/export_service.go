package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftrota/internal/dto"
	"shiftrota/internal/model"
	"shiftrota/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRangeInvalid = errors.New("导出时间范围无效")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// icsRangeMaxDays ICS 订阅单次导出的最大天数
const icsRangeMaxDays = 92

// ExportService 导出业务接口
//
// 设计说明：
//   - 月度轮班表导出为 Excel (.xlsx)：行=日期，列=小时，单元格=当时值班班组
//   - ICS 订阅导出单元在日期范围内的排班时段（跨午夜时段结束于次日）
//   - 两者都基于解析引擎的回放结果，不维护自己的状态
type ExportService interface {
	// ExportMonthRota 导出单元某月的轮班表为 Excel
	ExportMonthRota(ctx context.Context, req *dto.ExportRotaRequest) (*bytes.Buffer, string, error)
	// ExportICS 导出单元某日期范围的排班日历（ICS 文本）
	ExportICS(ctx context.Context, req *dto.ExportICSRequest) (string, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// rotaDay 单日解析结果的内部汇总
type rotaDay struct {
	date      time.Time
	patternID string
	weekIndex int
	dayOfWeek int
}

// resolveRange 取单元事件日志一次，逐日回放基准班制并定位周期位置
func (s *exportService) resolveRange(ctx context.Context, unitID string, from, to time.Time) ([]rotaDay, map[string]*model.ShiftPattern, error) {
	events, err := s.repo.ChangeEvent.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, nil, err
	}

	patterns := make(map[string]*model.ShiftPattern)
	loadPattern := func(id string) (*model.ShiftPattern, error) {
		if p, ok := patterns[id]; ok {
			return p, nil
		}
		p, err := s.repo.Pattern.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPatternNotFound
			}
			return nil, err
		}
		if p.CycleLengthWeeks < 1 {
			return nil, ErrInvalidConfiguration
		}
		patterns[id] = p
		return p, nil
	}

	var days []rotaDay
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		patternID, err := ReplayBasePattern(events, d)
		if err != nil {
			return nil, nil, err
		}
		pattern, err := loadPattern(patternID)
		if err != nil {
			return nil, nil, err
		}
		weekIndex, dayOfWeek := ResolveCyclePosition(pattern.AnchorWeekStart, pattern.CycleLengthWeeks, d)
		days = append(days, rotaDay{date: d, patternID: patternID, weekIndex: weekIndex, dayOfWeek: dayOfWeek})
	}

	return days, patterns, nil
}

// ════════════════════════════════════════════════════════════
// ExportMonthRota — 月度轮班表导出为 Excel
// ════════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet，标题行为 "<单元名> — <年>-<月> 轮班表"
//   - 行头：日期（含星期），列头：0:00 ~ 23:00
//   - 单元格：该小时值班的班组名；无人值守为 "—"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMonthRota(ctx context.Context, req *dto.ExportRotaRequest) (*bytes.Buffer, string, error) {
	unit, err := s.repo.Unit.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnitNotFound
		}
		s.logger.Error("查询单元失败", zap.Error(err))
		return nil, "", err
	}

	events, err := s.repo.ChangeEvent.ListByUnit(ctx, req.UnitID)
	if err != nil {
		return nil, "", err
	}

	from := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	// 班制与时段的请求内缓存
	patterns := make(map[string]*model.ShiftPattern)
	spanCache := make(map[string][]model.ScheduleSpan)

	teamAt := func(date time.Time, hour int) (string, error) {
		base, err := ReplayBasePattern(events, date)
		if err != nil {
			return "", err
		}
		dateKey := date.Format(model.DateOnly)
		var sameDay []model.ShiftChangeEvent
		for i := range events {
			if events[i].EffectiveDate.Format(model.DateOnly) == dateKey {
				sameDay = append(sameDay, events[i])
			}
		}
		patternID := ApplySameDayEvents(base, sameDay, hour, 0)

		pattern, ok := patterns[patternID]
		if !ok {
			pattern, err = s.repo.Pattern.GetByID(ctx, patternID)
			if err != nil {
				return "", err
			}
			if pattern.CycleLengthWeeks < 1 {
				return "", ErrInvalidConfiguration
			}
			patterns[patternID] = pattern
		}

		weekIndex, dayOfWeek := ResolveCyclePosition(pattern.AnchorWeekStart, pattern.CycleLengthWeeks, date)
		cacheKey := fmt.Sprintf("%s:%d:%d", patternID, weekIndex, dayOfWeek)
		spans, ok := spanCache[cacheKey]
		if !ok {
			spans, err = s.repo.Span.ListBySlot(ctx, patternID, weekIndex, dayOfWeek)
			if err != nil {
				return "", err
			}
			spanCache[cacheKey] = spans
		}

		for i := range spans {
			span := &spans[i]
			startMinutes, err := ParseClock(span.StartTime)
			if err != nil {
				return "", ErrInvalidConfiguration
			}
			endMinutes, err := ParseClock(span.EndTime)
			if err != nil {
				return "", ErrInvalidConfiguration
			}
			if SpanCoversHour(startMinutes, endMinutes, hour) {
				if span.Team != nil {
					return span.Team.Name, nil
				}
				return span.TeamID, nil
			}
		}
		return "", nil // 无人值守
	}

	// ── 生成 Excel ──

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "轮班表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	lastCol, _ := excelize.ColumnNumberToName(25)
	f.SetColWidth(sheetName, "B", lastCol, 8)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("%s — %d-%02d 轮班表", unit.Name, req.Year, req.Month)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", lastCol))

	// 表头：日期 + 24 小时
	f.SetCellValue(sheetName, "A2", "日期")
	for hour := 0; hour < 24; hour++ {
		cell, _ := excelize.CoordinatesToCellName(2+hour, 2)
		f.SetCellValue(sheetName, cell, fmt.Sprintf("%d:00", hour))
	}
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s2", lastCol), headerStyle)

	dayNames := []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

	row := 3
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dow := (int(d.Weekday()) + 6) % 7
		dateCell, _ := excelize.CoordinatesToCellName(1, row)
		f.SetCellValue(sheetName, dateCell, fmt.Sprintf("%s %s", d.Format(model.DateOnly), dayNames[dow]))

		for hour := 0; hour < 24; hour++ {
			teamName, err := teamAt(d, hour)
			if err != nil {
				return nil, "", err
			}
			if teamName == "" {
				teamName = "—"
			}
			cell, _ := excelize.CoordinatesToCellName(2+hour, row)
			f.SetCellValue(sheetName, cell, teamName)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s-轮班表-%d-%02d.xlsx", unit.Name, req.Year, req.Month)
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportICS — 排班日历订阅导出
// ════════════════════════════════════════════════════════════
//
// 每个排班时段生成一条 VEVENT，摘要为班组名；
// 跨午夜时段的 DTEND 落在次日。基于当日基准班制，日内切换不拆分事件。

func (s *exportService) ExportICS(ctx context.Context, req *dto.ExportICSRequest) (string, string, error) {
	from, err := ParseDate(req.From)
	if err != nil {
		return "", "", err
	}
	to, err := ParseDate(req.To)
	if err != nil {
		return "", "", err
	}
	if to.Before(from) || int(to.Sub(from).Hours()/24) > icsRangeMaxDays {
		return "", "", ErrExportRangeInvalid
	}

	unit, err := s.repo.Unit.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrUnitNotFound
		}
		return "", "", err
	}

	days, patterns, err := s.resolveRange(ctx, req.UnitID, from, to)
	if err != nil {
		return "", "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftrota//rota-feed//CN")

	spanCache := make(map[string][]model.ScheduleSpan)

	for _, day := range days {
		cacheKey := fmt.Sprintf("%s:%d:%d", day.patternID, day.weekIndex, day.dayOfWeek)
		spans, ok := spanCache[cacheKey]
		if !ok {
			spans, err = s.repo.Span.ListBySlot(ctx, day.patternID, day.weekIndex, day.dayOfWeek)
			if err != nil {
				return "", "", err
			}
			spanCache[cacheKey] = spans
		}

		for i := range spans {
			span := &spans[i]
			startMinutes, err := ParseClock(span.StartTime)
			if err != nil {
				return "", "", ErrInvalidConfiguration
			}
			endMinutes, err := ParseClock(span.EndTime)
			if err != nil {
				return "", "", ErrInvalidConfiguration
			}

			start := day.date.Add(time.Duration(startMinutes) * time.Minute)
			end := day.date.Add(time.Duration(endMinutes) * time.Minute)
			if endMinutes <= startMinutes {
				end = end.AddDate(0, 0, 1) // 跨午夜
			}

			summary := span.TeamID
			if span.Team != nil {
				summary = span.Team.Name
			}
			if pattern := patterns[day.patternID]; pattern != nil {
				summary = fmt.Sprintf("%s · %s", summary, pattern.Name)
			}

			uid := fmt.Sprintf("%s-%s-%s@shiftrota", req.UnitID, span.SpanID, day.date.Format("20060102"))
			event := cal.AddEvent(uid)
			event.SetStartAt(start)
			event.SetEndAt(end)
			event.SetSummary(summary)
			event.SetLocation(unit.Name)
		}
	}

	filename := fmt.Sprintf("%s-排班-%s-%s.ics", unit.Name, req.From, req.To)
	return cal.Serialize(), filename, nil
}
