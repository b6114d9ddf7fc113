package model

// Department 部门表 — 对应 departments
// 部门是固定参考数据，不随学期版本化
type Department struct {
	DeptName string `gorm:"column:dept_name;primaryKey" json:"dept_name"`
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
