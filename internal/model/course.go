package model

// CourseRequest 课程经费申请行 — 对应 course_requests
//
// 行条目独立于修订存储：同一物理行可通过 cfr_courses 链接到多个修订
// （表示跨提交未变化）。审批字段 commitment_code/approver 由审批方
// 原地更新，不参与重复检测的内容比较。
type CourseRequest struct {
	ID             int64   `gorm:"primaryKey"                      json:"id"`
	Priority       int     `gorm:"not null"                        json:"priority"`
	Course         string  `gorm:"not null"                        json:"course"`
	Sec            string  `gorm:"not null"                        json:"sec"`
	MiniSession    bool    `gorm:"column:mini_session;not null"    json:"mini_session"`
	OnlineCourse   bool    `gorm:"column:online_course;not null"   json:"online_course"`
	NumStudents    int     `gorm:"column:num_students;not null"    json:"num_students"`
	Instructor     string  `gorm:"not null"                        json:"instructor"`
	BannerID       string  `gorm:"column:banner_id;not null"       json:"banner_id"`
	InstRank       string  `gorm:"column:inst_rank;not null"       json:"inst_rank"`
	Cost           float64 `gorm:"not null"                        json:"cost"`
	Reason         string  `gorm:"not null"                        json:"reason"`
	CommitmentCode *string `gorm:"column:commitment_code"          json:"commitment_code,omitempty"`
	Approver       *string `gorm:"column:approver"                 json:"approver,omitempty"`
}

// TableName 指定表名
func (CourseRequest) TableName() string { return "course_requests" }

// ContentEquals 可见字段逐一比较（不含审批字段）
// 重复检测的判据：内容相同的行在新修订中复用而非重插
func (c *CourseRequest) ContentEquals(o *CourseRequest) bool {
	return c.Priority == o.Priority &&
		c.Course == o.Course &&
		c.Sec == o.Sec &&
		c.MiniSession == o.MiniSession &&
		c.OnlineCourse == o.OnlineCourse &&
		c.NumStudents == o.NumStudents &&
		c.Instructor == o.Instructor &&
		c.BannerID == o.BannerID &&
		c.InstRank == o.InstRank &&
		c.Cost == o.Cost &&
		c.Reason == o.Reason
}

// CFRCourseLink 课程与修订的链接表 — 对应 cfr_courses
type CFRCourseLink struct {
	CourseID    int64  `gorm:"column:course_id;primaryKey"    json:"course_id"`
	DeptName    string `gorm:"column:dept_name;primaryKey"    json:"dept_name"`
	Season      string `gorm:"primaryKey"                     json:"season"`
	CalYear     int    `gorm:"column:cal_year;primaryKey"     json:"cal_year"`
	RevisionNum int    `gorm:"column:revision_num;primaryKey" json:"revision_num"`
}

// TableName 指定表名
func (CFRCourseLink) TableName() string { return "cfr_courses" }
