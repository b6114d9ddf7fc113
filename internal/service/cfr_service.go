package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/config"
	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
)

// ── CFR 提交模块业务错误 ──

var (
	ErrNoActiveSemester   = errors.New("no active semester is configured")
	ErrDepartmentNotFound = errors.New("department does not exist")
)

// CFRService CFR 提交与查询业务接口
//
// 提交协议（课程与薪资节余互为镜像）：
//  1. 先整批校验，任一行出错即中止，不落任何数据
//  2. 单事务内：锁部门行 → 取活动学期 → 取上一修订 → 建新修订
//  3. 逐行与上一修订做全字段内容比对，重复复用原行，否则插入新行，
//     复用或新建的行一律链接到新修订
//  4. 另一类条目（提交课程时的节余、提交节余时的课程）的链接
//     原样结转到新修订
//  5. 提交成功后异步发送通知邮件（新建与修订两种事件）
type CFRService interface {
	SubmitCourses(ctx context.Context, actor *model.Actor, req *dto.SubmitCoursesRequest) (*dto.SubmitResponse, error)
	SubmitSavings(ctx context.Context, actor *model.Actor, req *dto.SubmitSavingsRequest) (*dto.SubmitResponse, error)
	CurrentCourses(ctx context.Context, deptName string) ([]dto.CourseResponse, error)
	CurrentSavings(ctx context.Context, deptName string) ([]dto.SavingsResponse, error)
	Revisions(ctx context.Context, deptName string) ([]dto.RevisionResponse, error)
}

type cfrService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewCFRService 创建 CFRService 实例
func NewCFRService(cfg *config.Config, repo *repository.Repository, notifier NotificationService, logger *zap.Logger) CFRService {
	return &cfrService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

// nextRevision 构造修订链的下一条修订
//
// 首个修订：revision_num=0，date_initial=now，dean_committed=0。
// 后续修订：revision_num 递增 1，date_initial 从上一修订照搬，
// date_revised=now，dean_committed 结转。
func nextRevision(previous *model.CFRRevision, deptName, season string, calYear int, submitter string) *model.CFRRevision {
	now := time.Now()
	if previous == nil {
		return &model.CFRRevision{
			DeptName:    deptName,
			Season:      season,
			CalYear:     calYear,
			RevisionNum: 0,
			DateInitial: now,
			Submitter:   submitter,
		}
	}
	return &model.CFRRevision{
		DeptName:      deptName,
		Season:        season,
		CalYear:       calYear,
		RevisionNum:   previous.RevisionNum + 1,
		DateInitial:   previous.DateInitial,
		DateRevised:   &now,
		Submitter:     submitter,
		DeanCommitted: previous.DeanCommitted,
	}
}

// ────────────────────── SubmitCourses ──────────────────────

func (s *cfrService) SubmitCourses(ctx context.Context, actor *model.Actor, req *dto.SubmitCoursesRequest) (*dto.SubmitResponse, error) {
	// 1. 整批前置校验
	courses := make([]*model.CourseRequest, 0, len(req.Courses))
	for i := range req.Courses {
		course, err := validateCourseRow(&req.Courses[i], s.cfg.Feature.BannerZeroSentinel)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	// 2. 事务
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	// 锁部门行：同一部门的修订创建串行化
	if _, err := txRepo.Department.LockByName(ctx, actor.DeptName); err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("锁定部门失败", zap.String("dept", actor.DeptName), zap.Error(err))
		return nil, err
	}

	revision, previous, err := s.createRevision(ctx, txRepo, actor)
	if err != nil {
		rollback()
		return nil, err
	}
	newKey := revision.Key()

	// 3. 逐行调和：重复复用，否则插入；一律链接
	var newCourses []dto.CoursePair
	for _, course := range courses {
		var existing *model.CourseRequest
		if previous != nil {
			existing, err = txRepo.Course.FindDuplicate(ctx, previous.Key(), course)
			if err != nil {
				rollback()
				s.logger.Error("课程重复检测失败", zap.Error(err))
				return nil, err
			}
		}

		courseID := int64(0)
		if existing != nil {
			courseID = existing.ID
		} else {
			if err := txRepo.Course.Insert(ctx, course); err != nil {
				rollback()
				s.logger.Error("插入课程行失败", zap.Error(err))
				return nil, err
			}
			courseID = course.ID
			newCourses = append(newCourses, dto.CoursePair{Course: course.Course, Sec: course.Sec})
		}

		if err := txRepo.Course.Link(ctx, courseID, newKey); err != nil {
			rollback()
			s.logger.Error("链接课程行失败", zap.Error(err))
			return nil, err
		}
	}

	// 4. 结转上一修订的薪资节余链接
	if previous != nil {
		savings, err := txRepo.Savings.ListByRevision(ctx, previous.Key())
		if err != nil {
			rollback()
			s.logger.Error("查询上一修订节余失败", zap.Error(err))
			return nil, err
		}
		for i := range savings {
			if err := txRepo.Savings.Link(ctx, savings[i].ID, newKey); err != nil {
				rollback()
				s.logger.Error("结转节余链接失败", zap.Error(err))
				return nil, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("CFR 课程提交成功",
		zap.String("dept", actor.DeptName),
		zap.Int("revision", revision.RevisionNum),
		zap.Int("new_courses", len(newCourses)))

	// 5. 提交后通知
	if previous != nil {
		s.notifier.NotifyRevision(actor.DeptName)
	} else {
		s.notifier.NotifyNewCFR(actor.DeptName)
	}

	return &dto.SubmitResponse{
		RevisionNum: revision.RevisionNum,
		NewCount:    len(newCourses),
		NewCourses:  newCourses,
		Message:     courseSubmitMessage(newCourses),
	}, nil
}

// courseSubmitMessage 课程提交的用户可读结果
func courseSubmitMessage(newCourses []dto.CoursePair) string {
	if len(newCourses) == 0 {
		return "No courses added or modified."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d courses added or modified:\n", len(newCourses))
	for _, pair := range newCourses {
		fmt.Fprintf(&b, "%s\t%s\n", pair.Course, pair.Sec)
	}
	return b.String()
}

// ────────────────────── SubmitSavings ──────────────────────

func (s *cfrService) SubmitSavings(ctx context.Context, actor *model.Actor, req *dto.SubmitSavingsRequest) (*dto.SubmitResponse, error) {
	savings := make([]*model.SalarySaving, 0, len(req.Savings))
	for i := range req.Savings {
		saving, err := validateSavingsRow(&req.Savings[i])
		if err != nil {
			return nil, err
		}
		savings = append(savings, saving)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	if _, err := txRepo.Department.LockByName(ctx, actor.DeptName); err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("锁定部门失败", zap.String("dept", actor.DeptName), zap.Error(err))
		return nil, err
	}

	revision, previous, err := s.createRevision(ctx, txRepo, actor)
	if err != nil {
		rollback()
		return nil, err
	}
	newKey := revision.Key()

	newCount := 0
	for _, saving := range savings {
		var existing *model.SalarySaving
		if previous != nil {
			existing, err = txRepo.Savings.FindDuplicate(ctx, previous.Key(), saving)
			if err != nil {
				rollback()
				s.logger.Error("节余重复检测失败", zap.Error(err))
				return nil, err
			}
		}

		savingsID := int64(0)
		if existing != nil {
			savingsID = existing.ID
		} else {
			if err := txRepo.Savings.Insert(ctx, saving); err != nil {
				rollback()
				s.logger.Error("插入节余行失败", zap.Error(err))
				return nil, err
			}
			savingsID = saving.ID
			newCount++
		}

		if err := txRepo.Savings.Link(ctx, savingsID, newKey); err != nil {
			rollback()
			s.logger.Error("链接节余行失败", zap.Error(err))
			return nil, err
		}
	}

	// 结转上一修订的课程链接
	if previous != nil {
		courses, err := txRepo.Course.ListByRevision(ctx, previous.Key())
		if err != nil {
			rollback()
			s.logger.Error("查询上一修订课程失败", zap.Error(err))
			return nil, err
		}
		for i := range courses {
			if err := txRepo.Course.Link(ctx, courses[i].ID, newKey); err != nil {
				rollback()
				s.logger.Error("结转课程链接失败", zap.Error(err))
				return nil, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("CFR 节余提交成功",
		zap.String("dept", actor.DeptName),
		zap.Int("revision", revision.RevisionNum),
		zap.Int("new_savings", newCount))

	if previous != nil {
		s.notifier.NotifyRevision(actor.DeptName)
	} else {
		s.notifier.NotifyNewCFR(actor.DeptName)
	}

	message := "No savings added or modified."
	if newCount > 0 {
		message = fmt.Sprintf("%d savings added or modified.", newCount)
	}

	return &dto.SubmitResponse{
		RevisionNum: revision.RevisionNum,
		NewCount:    newCount,
		Message:     message,
	}, nil
}

// createRevision 在事务内查出上一修订并插入新修订
// 调用方必须已持有部门行锁
func (s *cfrService) createRevision(ctx context.Context, txRepo *repository.Repository, actor *model.Actor) (revision, previous *model.CFRRevision, err error) {
	semester, err := txRepo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, nil, err
	}

	previous, err = txRepo.CFR.GetCurrent(ctx, actor.DeptName, semester.Season, semester.CalYear)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询当前修订失败", zap.String("dept", actor.DeptName), zap.Error(err))
			return nil, nil, err
		}
		previous = nil
	}

	revision = nextRevision(previous, actor.DeptName, semester.Season, semester.CalYear, actor.Username)
	if err := txRepo.CFR.Create(ctx, revision); err != nil {
		return nil, nil, err
	}
	return revision, previous, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *cfrService) CurrentCourses(ctx context.Context, deptName string) ([]dto.CourseResponse, error) {
	current, err := s.currentRevision(ctx, deptName)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []dto.CourseResponse{}, nil
	}

	courses, err := s.repo.Course.ListByRevision(ctx, current.Key())
	if err != nil {
		s.logger.Error("查询当前课程失败", zap.String("dept", deptName), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, toCourseResponse(&courses[i]))
	}
	return result, nil
}

func (s *cfrService) CurrentSavings(ctx context.Context, deptName string) ([]dto.SavingsResponse, error) {
	current, err := s.currentRevision(ctx, deptName)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return []dto.SavingsResponse{}, nil
	}

	savings, err := s.repo.Savings.ListByRevision(ctx, current.Key())
	if err != nil {
		s.logger.Error("查询当前节余失败", zap.String("dept", deptName), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SavingsResponse, 0, len(savings))
	for i := range savings {
		result = append(result, toSavingsResponse(&savings[i]))
	}
	return result, nil
}

func (s *cfrService) Revisions(ctx context.Context, deptName string) ([]dto.RevisionResponse, error) {
	semester, err := s.repo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}

	revisions, err := s.repo.CFR.ListRevisions(ctx, deptName, semester.Season, semester.CalYear)
	if err != nil {
		s.logger.Error("查询修订历史失败", zap.String("dept", deptName), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RevisionResponse, 0, len(revisions))
	for i := range revisions {
		result = append(result, toRevisionResponse(&revisions[i]))
	}
	return result, nil
}

// currentRevision 取部门在活动学期的当前修订；无修订返回 (nil, nil)
func (s *cfrService) currentRevision(ctx context.Context, deptName string) (*model.CFRRevision, error) {
	semester, err := s.repo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}

	current, err := s.repo.CFR.GetCurrent(ctx, deptName, semester.Season, semester.CalYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询当前修订失败", zap.String("dept", deptName), zap.Error(err))
		return nil, err
	}
	return current, nil
}

// ── 响应转换 ──

func toCourseResponse(c *model.CourseRequest) dto.CourseResponse {
	return dto.CourseResponse{
		ID:             c.ID,
		Priority:       c.Priority,
		Course:         c.Course,
		Sec:            c.Sec,
		MiniSession:    c.MiniSession,
		OnlineCourse:   c.OnlineCourse,
		NumStudents:    c.NumStudents,
		Instructor:     c.Instructor,
		BannerID:       c.BannerID,
		InstRank:       c.InstRank,
		Cost:           c.Cost,
		Reason:         c.Reason,
		CommitmentCode: c.CommitmentCode,
		Approver:       c.Approver,
	}
}

func toSavingsResponse(s *model.SalarySaving) dto.SavingsResponse {
	return dto.SavingsResponse{
		ID:           s.ID,
		LeaveType:    s.LeaveType,
		InstName:     s.InstName,
		Savings:      s.Savings,
		Notes:        s.Notes,
		ConfirmedAmt: s.ConfirmedAmt,
		Approver:     s.Approver,
	}
}

func toRevisionResponse(r *model.CFRRevision) dto.RevisionResponse {
	resp := dto.RevisionResponse{
		DeptName:      r.DeptName,
		Season:        r.Season,
		CalYear:       r.CalYear,
		RevisionNum:   r.RevisionNum,
		DateInitial:   r.DateInitial.Format("2006-01-02T15:04:05Z"),
		Submitter:     r.Submitter,
		DeanCommitted: r.DeanCommitted,
	}
	if r.DateRevised != nil {
		resp.DateRevised = r.DateRevised.Format("2006-01-02T15:04:05Z")
	}
	return resp
}
