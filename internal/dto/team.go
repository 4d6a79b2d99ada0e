package dto

// TeamResponse 班组详情响应
type TeamResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsHidden      bool   `json:"is_hidden"`
	LightColor    string `json:"light_color"`
	DarkColor     string `json:"dark_color"`
	ColorReversed bool   `json:"color_reversed"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}
