package service

import (
	"strconv"
	"strings"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// ValidationError 业务校验错误，携带出错字段
// 提交批次遇到首个校验错误即整体中止，不落任何数据
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// parseMoney 解析金额字符串：剥离 "$" 与 "," 后按浮点解析
func parseMoney(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(raw, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
}

// parseYesNo 解析 "yes"/"no"（大小写不敏感）
func parseYesNo(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}

// validateCourseRow 校验并解析单个课程行
//
// 规则：priority 留空视为 0，否则须为非负整数；course/sec 必填并统一
// 转大写；mini_session/online_course 须为 yes/no；num_students 须为非负
// 整数；banner_id 须为 9 位数字（bannerZero 开启时额外允许 "0" 表示
// 不适用）；cost 剥离 "$" "," 后须为合法浮点数。
// instructor、inst_rank、reason 不做校验。
func validateCourseRow(row *dto.CourseRow, bannerZero bool) (*model.CourseRequest, error) {
	priority := 0
	if strings.TrimSpace(row.Priority) != "" {
		p, err := strconv.Atoi(strings.TrimSpace(row.Priority))
		if err != nil {
			return nil, newValidationError("priority", "The priority field must be an integer")
		}
		if p < 0 {
			return nil, newValidationError("priority", "The priority field must be a positive integer")
		}
		priority = p
	}

	course := strings.TrimSpace(row.Course)
	sec := strings.TrimSpace(row.Sec)
	if course == "" || sec == "" {
		return nil, newValidationError("course", "The course and sec fields are required")
	}
	course = strings.ToUpper(course)
	sec = strings.ToUpper(sec)

	miniSession, ok := parseYesNo(row.MiniSession)
	if !ok {
		return nil, newValidationError("mini_session", `The mini_session field must be a "yes" or "no"`)
	}

	onlineCourse, ok := parseYesNo(row.OnlineCourse)
	if !ok {
		return nil, newValidationError("online_course", `The online_course field must be a "yes" or "no"`)
	}

	numStudents, err := strconv.Atoi(strings.TrimSpace(row.NumStudents))
	if err != nil {
		return nil, newValidationError("num_students", "The num_students field must be an integer")
	}
	if numStudents < 0 {
		return nil, newValidationError("num_students", "The num_students field must be a positive integer")
	}

	bannerID := strings.TrimSpace(row.BannerID)
	if !(bannerZero && bannerID == "0") {
		if len(bannerID) != 9 {
			return nil, newValidationError("banner_id", "The banner_id field must be a 9-digit number")
		}
		if _, err := strconv.Atoi(bannerID); err != nil {
			return nil, newValidationError("banner_id", "The banner_id field must be an integer")
		}
	}

	cost, err := parseMoney(row.Cost)
	if err != nil {
		return nil, newValidationError("cost", "The cost field must be a valid float")
	}

	return &model.CourseRequest{
		Priority:     priority,
		Course:       course,
		Sec:          sec,
		MiniSession:  miniSession,
		OnlineCourse: onlineCourse,
		NumStudents:  numStudents,
		Instructor:   row.Instructor,
		BannerID:     bannerID,
		InstRank:     row.InstRank,
		Cost:         cost,
		Reason:       row.Reason,
	}, nil
}

// validateSavingsRow 校验并解析单个薪资节余行
// inst_name、notes 不做校验
func validateSavingsRow(row *dto.SavingsRow) (*model.SalarySaving, error) {
	if !model.ValidLeaveType(row.LeaveType) {
		return nil, newValidationError("leave_type",
			`The leave_type field must be "Sabbatical," "RBO," "LWOP," or "Other"`)
	}

	savings, err := parseMoney(row.Savings)
	if err != nil {
		return nil, newValidationError("savings", "The savings field must be a valid float")
	}

	return &model.SalarySaving{
		LeaveType: row.LeaveType,
		InstName:  row.InstName,
		Savings:   savings,
		Notes:     row.Notes,
	}, nil
}
