package model

// 薪资节余的休假类型
const (
	LeaveSabbatical = "Sabbatical"
	LeaveRBO        = "RBO"
	LeaveLWOP       = "LWOP"
	LeaveOther      = "Other"
)

// ValidLeaveType 判断休假类型取值是否合法
func ValidLeaveType(leaveType string) bool {
	switch leaveType {
	case LeaveSabbatical, LeaveRBO, LeaveLWOP, LeaveOther:
		return true
	}
	return false
}

// SalarySaving 薪资节余行 — 对应 sal_savings
// 与课程行相同的修订链接机制；confirmed_amt/approver 为审批字段
type SalarySaving struct {
	ID           int64    `gorm:"primaryKey"                    json:"id"`
	LeaveType    string   `gorm:"column:leave_type;not null"    json:"leave_type"`
	InstName     string   `gorm:"column:inst_name;not null"     json:"inst_name"`
	Savings      float64  `gorm:"not null"                      json:"savings"`
	Notes        string   `gorm:"not null"                      json:"notes"`
	ConfirmedAmt *float64 `gorm:"column:confirmed_amt"          json:"confirmed_amt,omitempty"`
	Approver     *string  `gorm:"column:approver"               json:"approver,omitempty"`
}

// TableName 指定表名
func (SalarySaving) TableName() string { return "sal_savings" }

// ContentEquals 可见字段逐一比较（不含审批字段）
func (s *SalarySaving) ContentEquals(o *SalarySaving) bool {
	return s.LeaveType == o.LeaveType &&
		s.InstName == o.InstName &&
		s.Savings == o.Savings &&
		s.Notes == o.Notes
}

// CFRSavingsLink 薪资节余与修订的链接表 — 对应 cfr_savings
type CFRSavingsLink struct {
	SavingsID   int64  `gorm:"column:savings_id;primaryKey"   json:"savings_id"`
	DeptName    string `gorm:"column:dept_name;primaryKey"    json:"dept_name"`
	Season      string `gorm:"primaryKey"                     json:"season"`
	CalYear     int    `gorm:"column:cal_year;primaryKey"     json:"cal_year"`
	RevisionNum int    `gorm:"column:revision_num;primaryKey" json:"revision_num"`
}

// TableName 指定表名
func (CFRSavingsLink) TableName() string { return "cfr_savings" }
