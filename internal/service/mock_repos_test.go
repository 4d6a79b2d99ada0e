package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"shiftrota/internal/model"
)

// ── Mock PatternRepository ──

type mockPatternRepo struct {
	patterns map[string]*model.ShiftPattern
}

func newMockPatternRepo() *mockPatternRepo {
	return &mockPatternRepo{patterns: make(map[string]*model.ShiftPattern)}
}

func (m *mockPatternRepo) GetByID(_ context.Context, id string) (*model.ShiftPattern, error) {
	if p, ok := m.patterns[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) List(_ context.Context, includeHidden bool) ([]model.ShiftPattern, error) {
	var result []model.ShiftPattern
	for _, p := range m.patterns {
		if p.IsHidden && !includeHidden {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams map[string]*model.ShiftTeam
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.ShiftTeam)}
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.ShiftTeam, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context, includeHidden bool) ([]model.ShiftTeam, error) {
	var result []model.ShiftTeam
	for _, t := range m.teams {
		if t.IsHidden && !includeHidden {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock SpanRepository ──

type mockSpanRepo struct {
	spans []model.ScheduleSpan
}

func newMockSpanRepo() *mockSpanRepo {
	return &mockSpanRepo{}
}

func (m *mockSpanRepo) ListBySlot(_ context.Context, patternID string, weekIndex, dayOfWeek int) ([]model.ScheduleSpan, error) {
	var result []model.ScheduleSpan
	for _, s := range m.spans {
		if s.PatternID == patternID && s.WeekIndex == weekIndex && s.DayOfWeek == dayOfWeek {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockSpanRepo) ListByPattern(_ context.Context, patternID string, weekIndex, dayOfWeek *int) ([]model.ScheduleSpan, error) {
	var result []model.ScheduleSpan
	for _, s := range m.spans {
		if s.PatternID != patternID {
			continue
		}
		if weekIndex != nil && s.WeekIndex != *weekIndex {
			continue
		}
		if dayOfWeek != nil && s.DayOfWeek != *dayOfWeek {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := &result[i], &result[j]
		if a.WeekIndex != b.WeekIndex {
			return a.WeekIndex < b.WeekIndex
		}
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.SortOrder < b.SortOrder
	})
	return result, nil
}

// ── Mock UnitRepository ──

// mockUnitRepo 持有 eligibility/event 两个 mock 的引用，
// 以便 CreateWithGenesis 模拟真实仓储的单事务三表写入
type mockUnitRepo struct {
	units  map[string]*model.Unit
	elig   *mockEligibilityRepo
	events *mockChangeEventRepo
}

func newMockUnitRepo(elig *mockEligibilityRepo, events *mockChangeEventRepo) *mockUnitRepo {
	return &mockUnitRepo{units: make(map[string]*model.Unit), elig: elig, events: events}
}

func (m *mockUnitRepo) GetByID(_ context.Context, id string) (*model.Unit, error) {
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) List(_ context.Context, includeHidden bool) ([]model.Unit, error) {
	var result []model.Unit
	for _, u := range m.units {
		if u.IsHidden && !includeHidden {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockUnitRepo) CreateWithGenesis(ctx context.Context, unit *model.Unit, eligibilities []model.UnitPatternEligibility, genesis *model.ShiftChangeEvent) error {
	if unit.UnitID == "" {
		unit.UnitID = "unit-" + unit.Name
	}
	m.units[unit.UnitID] = unit
	for i := range eligibilities {
		eligibilities[i].UnitID = unit.UnitID
		m.elig.items = append(m.elig.items, eligibilities[i])
	}
	genesis.UnitID = unit.UnitID
	return m.events.Create(ctx, genesis)
}

// ── Mock EligibilityRepository ──

type mockEligibilityRepo struct {
	items []model.UnitPatternEligibility
}

func newMockEligibilityRepo() *mockEligibilityRepo {
	return &mockEligibilityRepo{}
}

func (m *mockEligibilityRepo) ListByUnit(_ context.Context, unitID string) ([]model.UnitPatternEligibility, error) {
	var result []model.UnitPatternEligibility
	for _, e := range m.items {
		if e.UnitID == unitID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (m *mockEligibilityRepo) Exists(_ context.Context, unitID, patternID string) (bool, error) {
	for _, e := range m.items {
		if e.UnitID == unitID && e.PatternID == patternID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEligibilityRepo) SetActive(_ context.Context, unitID, patternID string) error {
	for i := range m.items {
		if m.items[i].UnitID == unitID {
			m.items[i].IsActive = m.items[i].PatternID == patternID
		}
	}
	return nil
}

// activePattern 返回单元当前 is_active 的班制 ID（无则空串）
func (m *mockEligibilityRepo) activePattern(unitID string) string {
	for _, e := range m.items {
		if e.UnitID == unitID && e.IsActive {
			return e.PatternID
		}
	}
	return ""
}

// ── Mock ChangeEventRepository ──

type mockChangeEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.ShiftChangeEvent
	seq    int
}

func newMockChangeEventRepo() *mockChangeEventRepo {
	return &mockChangeEventRepo{events: make(map[string]*model.ShiftChangeEvent)}
}

func (m *mockChangeEventRepo) GetByID(_ context.Context, id string) (*model.ShiftChangeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChangeEventRepo) ListByUnit(_ context.Context, unitID string) ([]model.ShiftChangeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ShiftChangeEvent
	for _, e := range m.events {
		if e.UnitID == unitID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EffectiveAt().Before(result[j].EffectiveAt())
	})
	return result, nil
}

func (m *mockChangeEventRepo) ListOnDate(_ context.Context, unitID string, date time.Time) ([]model.ShiftChangeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dateKey := date.Format(model.DateOnly)
	var result []model.ShiftChangeEvent
	for _, e := range m.events {
		if e.UnitID == unitID && e.EffectiveDate.Format(model.DateOnly) == dateKey {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := &result[i], &result[j]
		if a.EffectiveHour != b.EffectiveHour {
			return a.EffectiveHour < b.EffectiveHour
		}
		return a.EffectiveMinute < b.EffectiveMinute
	})
	return result, nil
}

func (m *mockChangeEventRepo) ExistsAtInstant(_ context.Context, unitID string, date time.Time, hour, minute int, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.EventID == excludeID {
			continue
		}
		if e.UnitID == unitID && e.SameInstant(date, hour, minute) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockChangeEventRepo) Create(_ context.Context, event *model.ShiftChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 模拟数据库的唯一索引 (unit_id, effective_date, effective_hour, effective_minute)
	for _, e := range m.events {
		if e.UnitID == event.UnitID && e.SameInstant(event.EffectiveDate, event.EffectiveHour, event.EffectiveMinute) {
			return fmt.Errorf("duplicate key value violates unique constraint")
		}
	}
	if event.EventID == "" {
		m.seq++
		event.EventID = fmt.Sprintf("ev-%03d", m.seq)
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	copied := *event
	m.events[event.EventID] = &copied
	return nil
}

func (m *mockChangeEventRepo) Update(_ context.Context, event *model.ShiftChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.EventID]; !ok {
		return gorm.ErrRecordNotFound
	}
	event.UpdatedAt = time.Now().UTC()
	copied := *event
	m.events[event.EventID] = &copied
	return nil
}

func (m *mockChangeEventRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

// ── Mock BaseCache ──

type mockBaseCache struct {
	mu          sync.Mutex
	generations map[string]int64
	snapshots   map[string]string
	bumpCount   int
}

func newMockBaseCache() *mockBaseCache {
	return &mockBaseCache{
		generations: make(map[string]int64),
		snapshots:   make(map[string]string),
	}
}

func (m *mockBaseCache) Generation(_ context.Context, unitID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generations[unitID], nil
}

func (m *mockBaseCache) GetBase(_ context.Context, unitID string, generation int64, date string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.snapshots[fmt.Sprintf("%s:%d:%s", unitID, generation, date)]
	return v, ok, nil
}

func (m *mockBaseCache) SetBase(_ context.Context, unitID string, generation int64, date, patternID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[fmt.Sprintf("%s:%d:%s", unitID, generation, date)] = patternID
	return nil
}

func (m *mockBaseCache) Bump(_ context.Context, unitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[unitID]++
	m.bumpCount++
	return nil
}

// ── Mock Notifier ──

type notifyRecord struct {
	UnitID    string
	PatternID string
}

type mockNotifier struct {
	mu      sync.Mutex
	records []notifyRecord
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{}
}

func (m *mockNotifier) UnitPatternChanged(_ context.Context, unitID, patternID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, notifyRecord{UnitID: unitID, PatternID: patternID})
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
