package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shiftrota/internal/dto"
	"shiftrota/internal/service"
	"shiftrota/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// 查询参数绑定校验要求合法 UUID
const (
	testUnitID    = "5f0c2a4e-7d13-4b8a-9c6e-1f2a3b4c5d6e"
	testPatternID = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"
	testEventID   = "0e1f2a3b-4c5d-4e6f-8a9b-c0d1e2f3a4b5"
)

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock ResolutionService ──

type mockResolutionService struct {
	patternResult *dto.ActivePatternResponse
	patternErr    error
	teamResult    *dto.ActiveTeamResponse
	teamErr       error
	summaryResult *dto.DaySummaryResponse
	summaryErr    error
}

func (m *mockResolutionService) GetActivePattern(_ context.Context, _ *dto.ActivePatternRequest) (*dto.ActivePatternResponse, error) {
	return m.patternResult, m.patternErr
}
func (m *mockResolutionService) GetActiveTeam(_ context.Context, _ *dto.ActiveTeamRequest) (*dto.ActiveTeamResponse, error) {
	return m.teamResult, m.teamErr
}
func (m *mockResolutionService) GetDaySummary(_ context.Context, _ *dto.DaySummaryRequest) (*dto.DaySummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockResolutionService) ActivePatternAt(_ context.Context, _ string, _ time.Time) (string, error) {
	return "", nil
}

// ── Mock ChangeService ──

type mockChangeService struct {
	applyResult  *dto.ChangeEventResponse
	applyErr     error
	applyCaller  string
	updateResult *dto.ChangeEventResponse
	updateErr    error
	deleteErr    error
	listResult   []dto.ChangeEventResponse
	listErr      error
}

func (m *mockChangeService) ApplyActiveShift(_ context.Context, _ string, _ *dto.ActiveShiftPatchRequest, callerID string) (*dto.ChangeEventResponse, error) {
	m.applyCaller = callerID
	return m.applyResult, m.applyErr
}
func (m *mockChangeService) UpdateChange(_ context.Context, _ string, _ *dto.UpdateChangeRequest, _ string) (*dto.ChangeEventResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockChangeService) DeleteChange(_ context.Context, _ string, _ string) error {
	return m.deleteErr
}
func (m *mockChangeService) ListChanges(_ context.Context, _ string) ([]dto.ChangeEventResponse, error) {
	return m.listResult, m.listErr
}

// ── Mock UnitService ──

type mockUnitService struct {
	createResult *dto.UnitResponse
	createErr    error
	getResult    *dto.UnitResponse
	getErr       error
	listResult   []dto.UnitResponse
	listErr      error
	eligResult   []dto.EligiblePatternResponse
	eligErr      error
}

func (m *mockUnitService) Create(_ context.Context, _ *dto.CreateUnitRequest, _ string) (*dto.UnitResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockUnitService) GetByID(_ context.Context, _ string) (*dto.UnitResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockUnitService) List(_ context.Context, _ bool) ([]dto.UnitResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockUnitService) ListEligiblePatterns(_ context.Context, _ string) ([]dto.EligiblePatternResponse, error) {
	return m.eligResult, m.eligErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf         *bytes.Buffer
	xlsxName    string
	xlsxErr     error
	icsContent  string
	icsFilename string
	icsErr      error
}

func (m *mockExportService) ExportMonthRota(_ context.Context, _ *dto.ExportRotaRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.xlsxName, m.xlsxErr
}
func (m *mockExportService) ExportICS(_ context.Context, _ *dto.ExportICSRequest) (string, string, error) {
	return m.icsContent, m.icsFilename, m.icsErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// ResolutionHandler Tests
// ═══════════════════════════════════════════════════════════

func TestResolutionHandler_GetActivePattern_Success(t *testing.T) {
	mock := &mockResolutionService{
		patternResult: &dto.ActivePatternResponse{
			UnitID: testUnitID, Date: "2025-05-10", Hour: 9, PatternID: testPatternID,
		},
	}
	h := NewResolutionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/resolution/active-pattern?unit="+testUnitID+"&date=2025-05-10&hour=9&minute=0", nil)

	r := gin.New()
	r.GET("/resolution/active-pattern", h.GetActivePattern)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestResolutionHandler_GetActivePattern_BadQuery(t *testing.T) {
	h := NewResolutionHandler(&mockResolutionService{})

	w := httptest.NewRecorder()
	// unit 不是 UUID
	req := httptest.NewRequest("GET", "/resolution/active-pattern?unit=abc&date=2025-05-10", nil)

	r := gin.New()
	r.GET("/resolution/active-pattern", h.GetActivePattern)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestResolutionHandler_GetActivePattern_UnitNotFound(t *testing.T) {
	mock := &mockResolutionService{patternErr: service.ErrUnitNotFound}
	h := NewResolutionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/resolution/active-pattern?unit="+testUnitID+"&date=2025-05-10", nil)

	r := gin.New()
	r.GET("/resolution/active-pattern", h.GetActivePattern)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 30001 {
		t.Errorf("expected error code 30001, got %d", resp.Code)
	}
}

func TestResolutionHandler_GetActivePattern_NoHistory(t *testing.T) {
	mock := &mockResolutionService{patternErr: service.ErrNoHistory}
	h := NewResolutionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/resolution/active-pattern?unit="+testUnitID+"&date=2025-05-10", nil)

	r := gin.New()
	r.GET("/resolution/active-pattern", h.GetActivePattern)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 30002 {
		t.Errorf("expected error code 30002, got %d", resp.Code)
	}
}

func TestResolutionHandler_GetActiveTeam_NullTeam(t *testing.T) {
	// 无人值守：team_id=null 仍是 200
	mock := &mockResolutionService{
		teamResult: &dto.ActiveTeamResponse{
			PatternID: testPatternID, Date: "2025-05-10", Hour: 18, TeamID: nil,
		},
	}
	h := NewResolutionHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/resolution/active-team?pattern="+testPatternID+"&date=2025-05-10&hour=18", nil)

	r := gin.New()
	r.GET("/resolution/active-team", h.GetActiveTeam)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"team_id":null`) {
		t.Errorf("expected team_id null in body: %s", w.Body.String())
	}
}

// ═══════════════════════════════════════════════════════════
// ChangeHandler Tests
// ═══════════════════════════════════════════════════════════

func applyShiftRequest(body io.Reader) *http.Request {
	req := httptest.NewRequest("PATCH", "/units/"+testUnitID+"/active-shift", body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestChangeHandler_ApplyActiveShift_Success(t *testing.T) {
	mock := &mockChangeService{
		applyResult: &dto.ChangeEventResponse{
			ID: testEventID, UnitID: testUnitID, NewPatternID: testPatternID,
			EffectiveDate: "2025-05-10", EffectiveHour: 8,
		},
	}
	h := NewChangeHandler(mock)

	w := httptest.NewRecorder()
	req := applyShiftRequest(jsonBody(dto.ActiveShiftPatchRequest{
		Date: "2025-05-10", Hour: 8, Minute: 0, PatternID: testPatternID,
	}))
	req.Header.Set("X-Operator-ID", "op-001")

	r := gin.New()
	r.PATCH("/units/:id/active-shift", h.ApplyActiveShift)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.applyCaller != "op-001" {
		t.Errorf("expected caller op-001, got %s", mock.applyCaller)
	}
}

func TestChangeHandler_ApplyActiveShift_DefaultOperator(t *testing.T) {
	mock := &mockChangeService{applyResult: &dto.ChangeEventResponse{ID: testEventID}}
	h := NewChangeHandler(mock)

	w := httptest.NewRecorder()
	req := applyShiftRequest(jsonBody(dto.ActiveShiftPatchRequest{
		Date: "2025-05-10", Hour: 8, Minute: 0, PatternID: testPatternID,
	}))

	r := gin.New()
	r.PATCH("/units/:id/active-shift", h.ApplyActiveShift)
	r.ServeHTTP(w, req)

	if mock.applyCaller != "system" {
		t.Errorf("缺失操作者头时应回落到 system，实际=%s", mock.applyCaller)
	}
}

func TestChangeHandler_ApplyActiveShift_BadJSON(t *testing.T) {
	h := NewChangeHandler(&mockChangeService{})

	w := httptest.NewRecorder()
	req := applyShiftRequest(bytes.NewReader([]byte("invalid json")))

	r := gin.New()
	r.PATCH("/units/:id/active-shift", h.ApplyActiveShift)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestChangeHandler_ApplyActiveShift_Conflict(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		bizCode int
	}{
		{"重复时刻", service.ErrChangeConflict, 40001},
		{"班制不可用", service.ErrInvalidPattern, 40002},
		{"初始事件保护", service.ErrGenesisProtected, 40003},
	}

	for _, tt := range tests {
		mock := &mockChangeService{applyErr: tt.err}
		h := NewChangeHandler(mock)

		w := httptest.NewRecorder()
		req := applyShiftRequest(jsonBody(dto.ActiveShiftPatchRequest{
			Date: "2025-05-10", Hour: 8, Minute: 0, PatternID: testPatternID,
		}))

		r := gin.New()
		r.PATCH("/units/:id/active-shift", h.ApplyActiveShift)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("%s: expected 409, got %d", tt.name, w.Code)
		}
		resp := parseResponse(w)
		if resp.Code != tt.bizCode {
			t.Errorf("%s: expected error code %d, got %d", tt.name, tt.bizCode, resp.Code)
		}
	}
}

func TestChangeHandler_UpdateChange_NotFound(t *testing.T) {
	mock := &mockChangeService{updateErr: service.ErrEventNotFound}
	h := NewChangeHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/shift-changes/"+testEventID, jsonBody(dto.UpdateChangeRequest{}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/shift-changes/:id", h.UpdateChange)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40004 {
		t.Errorf("expected error code 40004, got %d", resp.Code)
	}
}

func TestChangeHandler_DeleteChange_GenesisProtected(t *testing.T) {
	mock := &mockChangeService{deleteErr: service.ErrGenesisProtected}
	h := NewChangeHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/shift-changes/"+testEventID, nil)

	r := gin.New()
	r.DELETE("/shift-changes/:id", h.DeleteChange)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 40003 {
		t.Errorf("expected error code 40003, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UnitHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUnitHandler_CreateUnit_Success(t *testing.T) {
	mock := &mockUnitService{
		createResult: &dto.UnitResponse{ID: testUnitID, Name: "一号机组", CommissionedDate: "2025-01-01"},
	}
	h := NewUnitHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/units", jsonBody(dto.CreateUnitRequest{
		Name:             "一号机组",
		CommissionedDate: "2025-01-01",
		InitialPatternID: testPatternID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/units", h.CreateUnit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestUnitHandler_CreateUnit_PatternNotFound(t *testing.T) {
	mock := &mockUnitService{createErr: service.ErrPatternNotFound}
	h := NewUnitHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/units", jsonBody(dto.CreateUnitRequest{
		Name:             "一号机组",
		CommissionedDate: "2025-01-01",
		InitialPatternID: testPatternID,
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/units", h.CreateUnit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20001 {
		t.Errorf("expected error code 20001, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportRota_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("xlsx-binary-content"),
		xlsxName: "一号机组-轮班表-2025-01.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/rota?unit="+testUnitID+"&year=2025&month=1", nil)

	r := gin.New()
	r.GET("/export/rota", h.ExportRota)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("expected xlsx content type, got %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("expected attachment disposition, got %s", cd)
	}
	if w.Body.String() != "xlsx-binary-content" {
		t.Error("body should be the raw xlsx bytes")
	}
}

func TestExportHandler_ExportICS_Success(t *testing.T) {
	mock := &mockExportService{
		icsContent:  "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		icsFilename: "一号机组-排班-2025-01-13-2025-01-19.ics",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/export/ics?unit="+testUnitID+"&from=2025-01-13&to=2025-01-19", nil)

	r := gin.New()
	r.GET("/export/ics", h.ExportICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("expected text/calendar content type, got %s", ct)
	}
}

func TestExportHandler_ExportICS_RangeInvalid(t *testing.T) {
	mock := &mockExportService{icsErr: service.ErrExportRangeInvalid}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET",
		"/export/ics?unit="+testUnitID+"&from=2025-01-19&to=2025-01-13", nil)

	r := gin.New()
	r.GET("/export/ics", h.ExportICS)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 10006 {
		t.Errorf("expected error code 10006, got %d", resp.Code)
	}
}
