package dto

// ── 用户管理模块 DTO ──

// AddUserRequest 新增用户请求（admin）
type AddUserRequest struct {
	Username        string `json:"username"         binding:"required"`
	Password        string `json:"password"         binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
	BannerID        string `json:"banner_id"        binding:"required"`
	Role            string `json:"role"             binding:"required"`
	Email           string `json:"email"`
	DeptName        string `json:"dept_name"` // submitter 角色必填
}

// ChangePasswordRequest 修改用户密码请求（admin）
type ChangePasswordRequest struct {
	Password        string `json:"password"         binding:"required"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}
