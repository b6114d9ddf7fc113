package dto

// ── 审批模块 DTO ──

// ApproveCourseEntry 单条课程审批数据
// CommitmentCode 为 nil 的条目视为未审批，跳过不报错
type ApproveCourseEntry struct {
	Course         string  `json:"course"`
	Sec            string  `json:"sec"`
	CommitmentCode *string `json:"commitment_code"`
	Cost           string  `json:"cost"` // 审批方可修改成本
}

// ApproveCoursesRequest 课程审批请求
type ApproveCoursesRequest struct {
	DeptName string               `json:"dept_name" binding:"required"`
	Courses  []ApproveCourseEntry `json:"courses"   binding:"required"`
}

// ApproveSavingsEntry 单条薪资节余审批数据
// ConfirmedAmt 为 nil 的条目视为未确认，跳过不报错
type ApproveSavingsEntry struct {
	InstName     string  `json:"inst_name"`
	ConfirmedAmt *string `json:"confirmed_amt"`
}

// ApproveSavingsRequest 薪资节余审批请求
type ApproveSavingsRequest struct {
	DeptName string                `json:"dept_name" binding:"required"`
	Savings  []ApproveSavingsEntry `json:"savings"   binding:"required"`
}

// CommitEntry 单个部门的经费承诺
type CommitEntry struct {
	DeptName string `json:"dept_name"`
	Amount   string `json:"amount"`
}

// CommitRequest 经费承诺批量请求（整体一个事务）
type CommitRequest struct {
	Commitments []CommitEntry `json:"commitments" binding:"required"`
}

// SummaryRow 审批汇总页的单个部门行
type SummaryRow struct {
	DeptName     string  `json:"dept_name"`
	TotalCost    float64 `json:"total_cost"`
	TotalSavings float64 `json:"total_savings"`
	Committed    float64 `json:"committed"`
	FundsNeeded  float64 `json:"funds_needed"`
	AllApproved  bool    `json:"all_approved"`
}

// SummaryResponse 审批汇总响应
type SummaryResponse struct {
	Summary []SummaryRow                `json:"summary"`
	Courses map[string][]CourseResponse `json:"courses"` // dept_name → 当前修订课程
}

// ApprovalResult 审批操作结果
type ApprovalResult struct {
	Approved []string `json:"approved"` // 已审批条目的标识（course sec / inst_name）
	Skipped  []string `json:"skipped"`  // 缺少承诺码/确认金额而跳过的条目
	Message  string   `json:"message"`
}
