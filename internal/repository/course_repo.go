package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// CourseRepository 课程行数据访问接口
type CourseRepository interface {
	// ListByRevision 查询链接到指定修订的全部课程行（按优先级、课程号排序）
	ListByRevision(ctx context.Context, key model.RevisionKey) ([]model.CourseRequest, error)
	// FindDuplicate 在指定修订内查找内容完全相同的课程行；无匹配返回 (nil, nil)
	FindDuplicate(ctx context.Context, key model.RevisionKey, course *model.CourseRequest) (*model.CourseRequest, error)
	// Insert 插入新课程行（回填自增 ID）
	Insert(ctx context.Context, course *model.CourseRequest) error
	// Link 将课程行链接到修订
	Link(ctx context.Context, courseID int64, key model.RevisionKey) error
	// ApproveByCourseSec 按 (course, sec) 在指定修订内原地更新审批字段
	// 返回受影响行数（0 表示该课程不在当前修订中）
	ApproveByCourseSec(ctx context.Context, key model.RevisionKey, course, sec string, commitmentCode *string, cost float64, approver string) (int64, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) ListByRevision(ctx context.Context, key model.RevisionKey) ([]model.CourseRequest, error) {
	var courses []model.CourseRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN cfr_courses ON cfr_courses.course_id = course_requests.id").
		Where("cfr_courses.dept_name = ? AND cfr_courses.season = ? AND cfr_courses.cal_year = ? AND cfr_courses.revision_num = ?",
			key.DeptName, key.Season, key.CalYear, key.RevisionNum).
		Order("course_requests.priority, course_requests.course, course_requests.sec").
		Find(&courses).Error
	return courses, err
}

func (r *courseRepo) FindDuplicate(ctx context.Context, key model.RevisionKey, course *model.CourseRequest) (*model.CourseRequest, error) {
	var found model.CourseRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN cfr_courses ON cfr_courses.course_id = course_requests.id").
		Where("cfr_courses.dept_name = ? AND cfr_courses.season = ? AND cfr_courses.cal_year = ? AND cfr_courses.revision_num = ?",
			key.DeptName, key.Season, key.CalYear, key.RevisionNum).
		Where("course_requests.priority = ? AND course_requests.course = ? AND course_requests.sec = ?",
			course.Priority, course.Course, course.Sec).
		Where("course_requests.mini_session = ? AND course_requests.online_course = ? AND course_requests.num_students = ?",
			course.MiniSession, course.OnlineCourse, course.NumStudents).
		Where("course_requests.instructor = ? AND course_requests.banner_id = ? AND course_requests.inst_rank = ?",
			course.Instructor, course.BannerID, course.InstRank).
		Where("course_requests.cost = ? AND course_requests.reason = ?",
			course.Cost, course.Reason).
		First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *courseRepo) Insert(ctx context.Context, course *model.CourseRequest) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepo) Link(ctx context.Context, courseID int64, key model.RevisionKey) error {
	link := model.CFRCourseLink{
		CourseID:    courseID,
		DeptName:    key.DeptName,
		Season:      key.Season,
		CalYear:     key.CalYear,
		RevisionNum: key.RevisionNum,
	}
	return r.db.WithContext(ctx).Create(&link).Error
}

func (r *courseRepo) ApproveByCourseSec(ctx context.Context, key model.RevisionKey, course, sec string, commitmentCode *string, cost float64, approver string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CourseRequest{}).
		Where("id IN (?)", r.db.
			Table("cfr_courses").
			Select("course_id").
			Where("dept_name = ? AND season = ? AND cal_year = ? AND revision_num = ?",
				key.DeptName, key.Season, key.CalYear, key.RevisionNum)).
		Where("course = ? AND sec = ?", course, sec).
		Updates(map[string]interface{}{
			"commitment_code": commitmentCode,
			"cost":            cost,
			"approver":        approver,
		})
	return result.RowsAffected, result.Error
}
