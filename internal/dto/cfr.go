package dto

// ── CFR 提交模块 DTO ──
//
// 提交行的字段一律为字符串：前端表单原样上送（priority 可为空、
// cost 可带 "$" 和 ","、mini_session 为 "Yes"/"No"），由 Service 层
// 统一校验并解析为类型化记录。

// CourseRow 单个课程行的提交数据
type CourseRow struct {
	Priority     string `json:"priority"`
	Course       string `json:"course"`
	Sec          string `json:"sec"`
	MiniSession  string `json:"mini_session"`
	OnlineCourse string `json:"online_course"`
	NumStudents  string `json:"num_students"`
	Instructor   string `json:"instructor"`
	BannerID     string `json:"banner_id"`
	InstRank     string `json:"inst_rank"`
	Cost         string `json:"cost"`
	Reason       string `json:"reason"`
}

// SavingsRow 单个薪资节余行的提交数据
type SavingsRow struct {
	LeaveType string `json:"leave_type"`
	InstName  string `json:"inst_name"`
	Savings   string `json:"savings"`
	Notes     string `json:"notes"`
}

// SubmitCoursesRequest 课程提交请求
type SubmitCoursesRequest struct {
	Courses []CourseRow `json:"courses" binding:"required"`
}

// SubmitSavingsRequest 薪资节余提交请求
type SubmitSavingsRequest struct {
	Savings []SavingsRow `json:"savings" binding:"required"`
}

// CoursePair 新增课程的 (course, sec) 标识
type CoursePair struct {
	Course string `json:"course"`
	Sec    string `json:"sec"`
}

// SubmitResponse 提交结果
type SubmitResponse struct {
	RevisionNum int          `json:"revision_num"`
	NewCount    int          `json:"new_count"`
	NewCourses  []CoursePair `json:"new_courses,omitempty"`
	Message     string       `json:"message"`
}

// CourseResponse 课程行响应（含审批字段）
type CourseResponse struct {
	ID             int64    `json:"id"`
	Priority       int      `json:"priority"`
	Course         string   `json:"course"`
	Sec            string   `json:"sec"`
	MiniSession    bool     `json:"mini_session"`
	OnlineCourse   bool     `json:"online_course"`
	NumStudents    int      `json:"num_students"`
	Instructor     string   `json:"instructor"`
	BannerID       string   `json:"banner_id"`
	InstRank       string   `json:"inst_rank"`
	Cost           float64  `json:"cost"`
	Reason         string   `json:"reason"`
	CommitmentCode *string  `json:"commitment_code"`
	Approver       *string  `json:"approver"`
}

// SavingsResponse 薪资节余行响应（含审批字段）
type SavingsResponse struct {
	ID           int64    `json:"id"`
	LeaveType    string   `json:"leave_type"`
	InstName     string   `json:"inst_name"`
	Savings      float64  `json:"savings"`
	Notes        string   `json:"notes"`
	ConfirmedAmt *float64 `json:"confirmed_amt"`
	Approver     *string  `json:"approver"`
}

// RevisionResponse 修订信息响应
type RevisionResponse struct {
	DeptName      string  `json:"dept_name"`
	Season        string  `json:"season"`
	CalYear       int     `json:"cal_year"`
	RevisionNum   int     `json:"revision_num"`
	DateInitial   string  `json:"date_initial"`
	DateRevised   string  `json:"date_revised,omitempty"`
	Submitter     string  `json:"submitter"`
	DeanCommitted float64 `json:"dean_committed"`
}
