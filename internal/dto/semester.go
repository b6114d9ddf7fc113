package dto

// ── 学期模块 DTO ──

// AddSemesterRequest 新增学期请求
type AddSemesterRequest struct {
	Season string `json:"season" binding:"required"`
	Year   string `json:"year"   binding:"required"`
}

// SetActiveSemesterRequest 切换活动学期请求
type SetActiveSemesterRequest struct {
	Season string `json:"season" binding:"required"`
	Year   string `json:"year"   binding:"required"`
}

// SemesterResponse 学期信息响应
type SemesterResponse struct {
	Season  string `json:"season"`
	CalYear int    `json:"cal_year"`
	Active  bool   `json:"active"`
}
