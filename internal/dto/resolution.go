package dto

// ActivePatternRequest 生效班制查询参数
type ActivePatternRequest struct {
	UnitID string `form:"unit" binding:"required,uuid"`
	Date   string `form:"date" binding:"required"` // "2006-01-02"
	Hour   int    `form:"hour" binding:"min=0,max=23"`
	Minute int    `form:"minute" binding:"min=0,max=59"`
}

// ActivePatternResponse 生效班制查询结果
type ActivePatternResponse struct {
	UnitID    string `json:"unit_id"`
	Date      string `json:"date"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	PatternID string `json:"pattern_id"`
	Pattern   *PatternBrief `json:"pattern,omitempty"`
}

// ActiveTeamRequest 值班班组查询参数
type ActiveTeamRequest struct {
	PatternID string `form:"pattern" binding:"required,uuid"`
	Date      string `form:"date" binding:"required"`
	Hour      int    `form:"hour" binding:"min=0,max=23"`
}

// ActiveTeamResponse 值班班组查询结果
// TeamID 为空表示该小时无人值守（合法结果，非错误）
type ActiveTeamResponse struct {
	PatternID string  `json:"pattern_id"`
	Date      string  `json:"date"`
	Hour      int     `json:"hour"`
	WeekIndex int     `json:"week_index"`
	DayOfWeek int     `json:"day_of_week"`
	TeamID    *string `json:"team_id"`
	TeamName  *string `json:"team_name,omitempty"`
}

// DaySummaryRequest 单日概要查询参数
type DaySummaryRequest struct {
	UnitID string `form:"unit" binding:"required,uuid"`
	Date   string `form:"date" binding:"required"`
}

// DaySummaryResponse 单日概要：当日基准班制 + 当日全部切换事件
type DaySummaryResponse struct {
	UnitID        string                `json:"unit_id"`
	Date          string                `json:"date"`
	BasePatternID string                `json:"base_pattern_id"`
	Changes       []ChangeEventResponse `json:"changes"`
}
