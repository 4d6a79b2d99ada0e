//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shiftrota/internal/model"
	"shiftrota/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=shiftrota password=shiftrota_password dbname=shiftrota_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.ShiftPattern{},
		&model.ShiftTeam{},
		&model.PatternTeamAssignment{},
		&model.ScheduleSpan{},
		&model.Unit{},
		&model.UnitPatternEligibility{},
		&model.ShiftChangeEvent{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (pattern *model.ShiftPattern, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	pattern = &model.ShiftPattern{
		Name:             fmt.Sprintf("测试班制-%d", time.Now().UnixNano()),
		CycleLengthWeeks: 1,
		AnchorWeekStart:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	}
	if err := testDB.WithContext(ctx).Create(pattern).Error; err != nil {
		t.Fatalf("创建班制失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("pattern_id = ?", pattern.PatternID).Delete(&model.ShiftPattern{})
	}
	return
}

func cleanupUnit(unitID string) {
	testDB.Unscoped().Where("unit_id = ?", unitID).Delete(&model.ShiftChangeEvent{})
	testDB.Unscoped().Where("unit_id = ?", unitID).Delete(&model.UnitPatternEligibility{})
	testDB.Unscoped().Where("unit_id = ?", unitID).Delete(&model.Unit{})
}

// ═══════════════════════════════════════════════════════════
// Test: CreateWithGenesis 事务
// ═══════════════════════════════════════════════════════════

func TestUnitRepo_CreateWithGenesis(t *testing.T) {
	pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	commissioned := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	unit := &model.Unit{
		Name:             fmt.Sprintf("测试机组-%d", time.Now().UnixNano()),
		CommissionedDate: commissioned,
	}
	eligibilities := []model.UnitPatternEligibility{
		{PatternID: pattern.PatternID, IsActive: true},
	}
	genesis := &model.ShiftChangeEvent{
		NewPatternID:  pattern.PatternID,
		EffectiveDate: commissioned,
	}

	if err := repo.Unit.CreateWithGenesis(ctx, unit, eligibilities, genesis); err != nil {
		t.Fatalf("CreateWithGenesis 失败: %v", err)
	}
	defer cleanupUnit(unit.UnitID)

	// 三表同事务写入均可见
	found, err := repo.Unit.GetByID(ctx, unit.UnitID)
	if err != nil {
		t.Fatalf("查询单元失败: %v", err)
	}
	if found.Name != unit.Name {
		t.Errorf("Name 不匹配: expected %s, got %s", unit.Name, found.Name)
	}

	events, err := repo.ChangeEvent.ListByUnit(ctx, unit.UnitID)
	if err != nil {
		t.Fatalf("查询事件失败: %v", err)
	}
	if len(events) != 1 || events[0].EffectiveHour != 0 || events[0].EffectiveMinute != 0 {
		t.Errorf("期望 1 条 00:00 初始事件，实际=%d", len(events))
	}

	eligible, err := repo.Eligibility.Exists(ctx, unit.UnitID, pattern.PatternID)
	if err != nil || !eligible {
		t.Errorf("期望可用班制存在: eligible=%v, err=%v", eligible, err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 事件唯一时刻约束
// ═══════════════════════════════════════════════════════════

func TestChangeEventRepo_UniqueInstant(t *testing.T) {
	pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	commissioned := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	unit := &model.Unit{
		Name:             fmt.Sprintf("测试机组-%d", time.Now().UnixNano()),
		CommissionedDate: commissioned,
	}
	genesis := &model.ShiftChangeEvent{NewPatternID: pattern.PatternID, EffectiveDate: commissioned}
	if err := repo.Unit.CreateWithGenesis(ctx, unit, nil, genesis); err != nil {
		t.Fatalf("CreateWithGenesis 失败: %v", err)
	}
	defer cleanupUnit(unit.UnitID)

	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	first := &model.ShiftChangeEvent{
		UnitID: unit.UnitID, NewPatternID: pattern.PatternID,
		EffectiveDate: date, EffectiveHour: 8,
	}
	if err := repo.ChangeEvent.Create(ctx, first); err != nil {
		t.Fatalf("写入事件失败: %v", err)
	}

	exists, err := repo.ChangeEvent.ExistsAtInstant(ctx, unit.UnitID, date, 8, 0, "")
	if err != nil || !exists {
		t.Errorf("期望时刻已占用: exists=%v, err=%v", exists, err)
	}

	// 排除自身后时刻视为空闲
	exists, err = repo.ChangeEvent.ExistsAtInstant(ctx, unit.UnitID, date, 8, 0, first.EventID)
	if err != nil || exists {
		t.Errorf("排除自身后期望空闲: exists=%v, err=%v", exists, err)
	}

	// 唯一索引兜底：同时刻重复写入直接报错
	dup := &model.ShiftChangeEvent{
		UnitID: unit.UnitID, NewPatternID: pattern.PatternID,
		EffectiveDate: date, EffectiveHour: 8,
	}
	if err := repo.ChangeEvent.Create(ctx, dup); err == nil {
		testDB.Unscoped().Where("event_id = ?", dup.EventID).Delete(&model.ShiftChangeEvent{})
		t.Fatal("期望唯一索引拒绝重复时刻，但写入成功")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: SetActive 单活跃标记
// ═══════════════════════════════════════════════════════════

func TestEligibilityRepo_SetActive(t *testing.T) {
	patternA, cleanupA := setupTestData(t)
	defer cleanupA()
	patternB, cleanupB := setupTestData(t)
	defer cleanupB()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	commissioned := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	unit := &model.Unit{
		Name:             fmt.Sprintf("测试机组-%d", time.Now().UnixNano()),
		CommissionedDate: commissioned,
	}
	eligibilities := []model.UnitPatternEligibility{
		{PatternID: patternA.PatternID, IsActive: true},
		{PatternID: patternB.PatternID, SortOrder: 1},
	}
	genesis := &model.ShiftChangeEvent{NewPatternID: patternA.PatternID, EffectiveDate: commissioned}
	if err := repo.Unit.CreateWithGenesis(ctx, unit, eligibilities, genesis); err != nil {
		t.Fatalf("CreateWithGenesis 失败: %v", err)
	}
	defer cleanupUnit(unit.UnitID)

	if err := repo.Eligibility.SetActive(ctx, unit.UnitID, patternB.PatternID); err != nil {
		t.Fatalf("SetActive 失败: %v", err)
	}

	rows, err := repo.Eligibility.ListByUnit(ctx, unit.UnitID)
	if err != nil {
		t.Fatalf("查询可用班制失败: %v", err)
	}

	activeCount := 0
	for _, row := range rows {
		if row.IsActive {
			activeCount++
			if row.PatternID != patternB.PatternID {
				t.Errorf("is_active 期望 %s，实际=%s", patternB.PatternID, row.PatternID)
			}
		}
	}
	if activeCount != 1 {
		t.Errorf("应恰好一条 is_active，实际=%d", activeCount)
	}
}
