package service

import (
	"testing"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
)

// ── 课程行校验 ──

func TestValidateCourseRow_Table(t *testing.T) {
	base := func() dto.CourseRow {
		return dto.CourseRow{
			Priority:     "1",
			Course:       "cs253",
			Sec:          "m01",
			MiniSession:  "No",
			OnlineCourse: "Yes",
			NumStudents:  "25",
			Instructor:   "Cooper",
			BannerID:     "800152344",
			InstRank:     "Professor",
			Cost:         "$1,234.33",
			Reason:       "growth",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*dto.CourseRow)
		wantField string // 为空表示期望通过
	}{
		{name: "合法行", mutate: func(*dto.CourseRow) {}},
		{name: "priority 留空默认 0", mutate: func(r *dto.CourseRow) { r.Priority = "" }},
		{name: "priority 非整数", mutate: func(r *dto.CourseRow) { r.Priority = "abc" }, wantField: "priority"},
		{name: "priority 为负", mutate: func(r *dto.CourseRow) { r.Priority = "-1" }, wantField: "priority"},
		{name: "course 缺失", mutate: func(r *dto.CourseRow) { r.Course = "" }, wantField: "course"},
		{name: "sec 缺失", mutate: func(r *dto.CourseRow) { r.Sec = "" }, wantField: "course"},
		{name: "mini_session 非法", mutate: func(r *dto.CourseRow) { r.MiniSession = "maybe" }, wantField: "mini_session"},
		{name: "online_course 非法", mutate: func(r *dto.CourseRow) { r.OnlineCourse = "" }, wantField: "online_course"},
		{name: "num_students 非整数", mutate: func(r *dto.CourseRow) { r.NumStudents = "many" }, wantField: "num_students"},
		{name: "num_students 为负", mutate: func(r *dto.CourseRow) { r.NumStudents = "-3" }, wantField: "num_students"},
		{name: "banner_id 长度不足", mutate: func(r *dto.CourseRow) { r.BannerID = "1234" }, wantField: "banner_id"},
		{name: "banner_id 非数字", mutate: func(r *dto.CourseRow) { r.BannerID = "80015234X" }, wantField: "banner_id"},
		{name: "cost 非法", mutate: func(r *dto.CourseRow) { r.Cost = "a lot" }, wantField: "cost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base()
			tt.mutate(&row)

			course, err := validateCourseRow(&row, false)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("应通过校验: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("期望校验失败，但通过了")
			}
			vErr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("期望 ValidationError，实际: %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("出错字段期望 %s，实际 %s", tt.wantField, vErr.Field)
			}
			_ = course
		})
	}
}

func TestValidateCourseRow_ParsedFields(t *testing.T) {
	row := dto.CourseRow{
		Priority:     "",
		Course:       "cs253",
		Sec:          "m01",
		MiniSession:  "YES",
		OnlineCourse: "no",
		NumStudents:  "25",
		Instructor:   "Cooper",
		BannerID:     "800152344",
		InstRank:     "Professor",
		Cost:         "$1,234.33",
		Reason:       "growth",
	}

	course, err := validateCourseRow(&row, false)
	if err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if course.Priority != 0 {
		t.Errorf("priority 留空应为 0，实际=%d", course.Priority)
	}
	if course.Course != "CS253" || course.Sec != "M01" {
		t.Errorf("course/sec 应转大写，实际=%s/%s", course.Course, course.Sec)
	}
	if !course.MiniSession {
		t.Error("YES 应解析为 true")
	}
	if course.OnlineCourse {
		t.Error("no 应解析为 false")
	}
	if course.Cost != 1234.33 {
		t.Errorf("cost 应剥离 $/, 后解析为 1234.33，实际=%v", course.Cost)
	}
}

func TestValidateCourseRow_BannerZeroSentinel(t *testing.T) {
	row := dto.CourseRow{
		Course:       "CS253",
		Sec:          "M01",
		MiniSession:  "No",
		OnlineCourse: "No",
		NumStudents:  "25",
		BannerID:     "0",
		Cost:         "100",
	}

	// 开关关闭时 "0" 不合法
	if _, err := validateCourseRow(&row, false); err == nil {
		t.Error("开关关闭时 banner_id=0 应校验失败")
	}

	// 开关开启时 "0" 作为"不适用"哨兵放行
	if _, err := validateCourseRow(&row, true); err != nil {
		t.Errorf("开关开启时 banner_id=0 应通过: %v", err)
	}
}

// ── 节余行校验 ──

func TestValidateSavingsRow(t *testing.T) {
	valid := dto.SavingsRow{
		LeaveType: "RBO",
		InstName:  "Cooper",
		Savings:   "$2,000",
		Notes:     "",
	}
	saving, err := validateSavingsRow(&valid)
	if err != nil {
		t.Fatalf("应通过校验: %v", err)
	}
	if saving.Savings != 2000 {
		t.Errorf("savings 应解析为 2000，实际=%v", saving.Savings)
	}

	badType := valid
	badType.LeaveType = "Vacation"
	if _, err := validateSavingsRow(&badType); err == nil {
		t.Error("未知 leave_type 应校验失败")
	}

	badAmount := valid
	badAmount.Savings = "some"
	_, err = validateSavingsRow(&badAmount)
	vErr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if vErr.Field != "savings" {
		t.Errorf("出错字段应为 savings，实际=%s", vErr.Field)
	}
}
