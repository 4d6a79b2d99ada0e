package dto

// PatternBrief 班制简要信息（嵌套在其他响应中）
type PatternBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PatternResponse 班制详情响应
type PatternResponse struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	SystemKey        *string                  `json:"system_key,omitempty"`
	IsHidden         bool                     `json:"is_hidden"`
	CycleLengthWeeks int                      `json:"cycle_length_weeks"`
	AnchorWeekStart  string                   `json:"anchor_week_start"` // "2006-01-02"
	LightColor       string                   `json:"light_color"`
	DarkColor        string                   `json:"dark_color"`
	ColorReversed    bool                     `json:"color_reversed"`
	TeamAssignments  []TeamAssignmentResponse `json:"team_assignments,omitempty"`
	CreatedAt        string                   `json:"created_at"`
	UpdatedAt        string                   `json:"updated_at"`
}

// TeamAssignmentResponse 班制下的班组关联响应
type TeamAssignmentResponse struct {
	TeamID      string  `json:"team_id"`
	TeamName    string  `json:"team_name"`
	DisplayName *string `json:"display_name,omitempty"`
	SortOrder   int     `json:"sort_order"`
}

// SpanResponse 排班时段响应
type SpanResponse struct {
	ID        string `json:"id"`
	PatternID string `json:"pattern_id"`
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name,omitempty"`
	WeekIndex int    `json:"week_index"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	SortOrder int    `json:"sort_order"`
}

// SpanListRequest 排班时段列表查询参数
type SpanListRequest struct {
	WeekIndex *int `form:"week_index" binding:"omitempty,min=0"`
	DayOfWeek *int `form:"day_of_week" binding:"omitempty,min=0,max=6"`
}
