package model

// 用户角色
const (
	RoleSubmitter = "submitter"
	RoleApprover  = "approver"
	RoleAdmin     = "admin"
)

// ValidRole 判断角色取值是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleSubmitter, RoleApprover, RoleAdmin:
		return true
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	Username     string `gorm:"primaryKey"                  json:"username"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	BannerID     string `gorm:"column:banner_id;not null"   json:"banner_id"`
	Role         string `gorm:"type:varchar(20);not null"   json:"role"`
	Email        string `gorm:"type:varchar(255)"           json:"email,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Submitter 提交者与部门的映射表 — 对应 submitters
// 每个 submitter 用户名对应唯一部门
type Submitter struct {
	Username string `gorm:"primaryKey"                  json:"username"`
	DeptName string `gorm:"column:dept_name;not null"   json:"dept_name"`
}

// TableName 指定表名
func (Submitter) TableName() string { return "submitters" }

// Actor 已认证的操作者（从 JWT 声明还原）
// Submitter 角色的 DeptName 非空，其余角色为空
type Actor struct {
	Username string
	Role     string
	DeptName string
}
