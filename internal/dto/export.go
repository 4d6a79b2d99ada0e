package dto

// ExportRotaRequest 月度轮班表导出查询参数
type ExportRotaRequest struct {
	UnitID string `form:"unit" binding:"required,uuid"`
	Year   int    `form:"year" binding:"required,min=2000,max=2100"`
	Month  int    `form:"month" binding:"required,min=1,max=12"`
}

// ExportICSRequest ICS 日历订阅导出查询参数
type ExportICSRequest struct {
	UnitID string `form:"unit" binding:"required,uuid"`
	From   string `form:"from" binding:"required"` // "2006-01-02"
	To     string `form:"to" binding:"required"`
}
