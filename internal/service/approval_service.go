package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/config"
	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
)

// ── 审批模块业务错误 ──

var ErrNoCurrentCFR = errors.New("department has no current funding request")

// ApprovalService 审批与汇总业务接口
type ApprovalService interface {
	// ApproveCourses 按 (course, sec) 审批部门当前修订中的课程：
	// 写入承诺码、审批者，并按审批方给定值更新成本。
	// 缺少承诺码的条目跳过（记录不报错）。
	ApproveCourses(ctx context.Context, actor *model.Actor, req *dto.ApproveCoursesRequest) (*dto.ApprovalResult, error)
	// ApproveSavings 按 inst_name 审批薪资节余：写入确认金额与审批者。
	// 缺少确认金额的条目跳过。
	ApproveSavings(ctx context.Context, actor *model.Actor, req *dto.ApproveSavingsRequest) (*dto.ApprovalResult, error)
	// CommitFunds 批量写入部门当前修订的承诺金额，整批一个事务，
	// 任一条目无效则全部回滚
	CommitFunds(ctx context.Context, req *dto.CommitRequest) error
	// Summary 审批汇总：对每个当前修订含至少一门课程的部门计算
	// 成本合计、节余合计、已承诺金额、尚需经费（下限 0）与全审批标志
	Summary(ctx context.Context) (*dto.SummaryResponse, error)
}

type approvalService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewApprovalService 创建 ApprovalService 实例
func NewApprovalService(cfg *config.Config, repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ApprovalService {
	return &approvalService{cfg: cfg, repo: repo, notifier: notifier, logger: logger}
}

// ────────────────────── ApproveCourses ──────────────────────

func (s *approvalService) ApproveCourses(ctx context.Context, actor *model.Actor, req *dto.ApproveCoursesRequest) (*dto.ApprovalResult, error) {
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

	current, err := s.activeCurrentRevision(ctx, txRepo, req.DeptName)
	if err != nil {
		rollback()
		return nil, err
	}
	key := current.Key()

	result := &dto.ApprovalResult{Approved: []string{}, Skipped: []string{}}
	for _, entry := range req.Courses {
		label := fmt.Sprintf("%s %s", entry.Course, entry.Sec)

		if entry.CommitmentCode == nil {
			result.Skipped = append(result.Skipped, label)
			continue
		}

		cost, err := parseMoney(entry.Cost)
		if err != nil {
			rollback()
			return nil, newValidationError("cost", "The cost field must be a valid float")
		}

		affected, err := txRepo.Course.ApproveByCourseSec(ctx, key, entry.Course, entry.Sec, entry.CommitmentCode, cost, actor.Username)
		if err != nil {
			rollback()
			s.logger.Error("审批课程失败", zap.String("course", label), zap.Error(err))
			return nil, err
		}
		if affected == 0 {
			result.Skipped = append(result.Skipped, label)
			continue
		}
		result.Approved = append(result.Approved, label)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("课程审批完成",
		zap.String("dept", req.DeptName),
		zap.Int("approved", len(result.Approved)),
		zap.Int("skipped", len(result.Skipped)))

	if len(result.Approved) > 0 {
		s.notifier.NotifyStatusUpdate(req.DeptName)
	}

	result.Message = "Courses approved:\n" + strings.Join(result.Approved, "\n")
	return result, nil
}

// ────────────────────── ApproveSavings ──────────────────────

func (s *approvalService) ApproveSavings(ctx context.Context, actor *model.Actor, req *dto.ApproveSavingsRequest) (*dto.ApprovalResult, error) {
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

	current, err := s.activeCurrentRevision(ctx, txRepo, req.DeptName)
	if err != nil {
		rollback()
		return nil, err
	}
	key := current.Key()

	result := &dto.ApprovalResult{Approved: []string{}, Skipped: []string{}}
	for _, entry := range req.Savings {
		if entry.ConfirmedAmt == nil {
			result.Skipped = append(result.Skipped, entry.InstName)
			continue
		}

		amount, err := parseMoney(*entry.ConfirmedAmt)
		if err != nil {
			rollback()
			return nil, newValidationError("confirmed_amt", "The confirmed_amt field must be a valid float")
		}

		affected, err := txRepo.Savings.ApproveByInstName(ctx, key, entry.InstName, &amount, actor.Username)
		if err != nil {
			rollback()
			s.logger.Error("审批节余失败", zap.String("inst_name", entry.InstName), zap.Error(err))
			return nil, err
		}
		if affected == 0 {
			result.Skipped = append(result.Skipped, entry.InstName)
			continue
		}
		result.Approved = append(result.Approved, entry.InstName)
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("节余审批完成",
		zap.String("dept", req.DeptName),
		zap.Int("approved", len(result.Approved)),
		zap.Int("skipped", len(result.Skipped)))

	if len(result.Approved) > 0 {
		s.notifier.NotifyStatusUpdate(req.DeptName)
	}

	result.Message = "Salary savings approved:\n" + strings.Join(result.Approved, "\n")
	return result, nil
}

// ────────────────────── CommitFunds ──────────────────────

func (s *approvalService) CommitFunds(ctx context.Context, req *dto.CommitRequest) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)

	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	for _, entry := range req.Commitments {
		if entry.DeptName == "" {
			rollback()
			return newValidationError("dept_name", "The dept_name field is required")
		}

		amount, err := parseMoney(entry.Amount)
		if err != nil {
			rollback()
			return newValidationError("amount", "The amount field must be a valid float")
		}

		current, err := s.activeCurrentRevision(ctx, txRepo, entry.DeptName)
		if err != nil {
			rollback()
			if errors.Is(err, ErrNoCurrentCFR) {
				return newValidationError("dept_name",
					fmt.Sprintf("Department %s has no current funding request", entry.DeptName))
			}
			return err
		}

		if err := txRepo.CFR.UpdateDeanCommitted(ctx, current.Key(), amount); err != nil {
			rollback()
			s.logger.Error("写入承诺金额失败", zap.String("dept", entry.DeptName), zap.Error(err))
			return err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("经费承诺写入完成", zap.Int("departments", len(req.Commitments)))
	return nil
}

// ────────────────────── Summary ──────────────────────

func (s *approvalService) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	semester, err := s.repo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}

	departments, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("查询部门列表失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.SummaryResponse{
		Summary: []dto.SummaryRow{},
		Courses: make(map[string][]dto.CourseResponse),
	}

	for i := range departments {
		deptName := departments[i].DeptName

		current, err := s.repo.CFR.GetCurrent(ctx, deptName, semester.Season, semester.CalYear)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			s.logger.Error("查询当前修订失败", zap.String("dept", deptName), zap.Error(err))
			return nil, err
		}
		key := current.Key()

		courses, err := s.repo.Course.ListByRevision(ctx, key)
		if err != nil {
			s.logger.Error("查询当前课程失败", zap.String("dept", deptName), zap.Error(err))
			return nil, err
		}
		// 当前修订没有课程的部门不进汇总
		if len(courses) == 0 {
			continue
		}

		savings, err := s.repo.Savings.ListByRevision(ctx, key)
		if err != nil {
			s.logger.Error("查询当前节余失败", zap.String("dept", deptName), zap.Error(err))
			return nil, err
		}

		row := s.buildSummaryRow(deptName, current, courses, savings)
		resp.Summary = append(resp.Summary, row)

		courseList := make([]dto.CourseResponse, 0, len(courses))
		for j := range courses {
			courseList = append(courseList, toCourseResponse(&courses[j]))
		}
		resp.Courses[deptName] = courseList
	}

	return resp, nil
}

// buildSummaryRow 计算单个部门的汇总行
func (s *approvalService) buildSummaryRow(deptName string, current *model.CFRRevision, courses []model.CourseRequest, savings []model.SalarySaving) dto.SummaryRow {
	allApproved := true
	totalCost := 0.0
	for i := range courses {
		totalCost += courses[i].Cost
		allApproved = allApproved && courses[i].Approver != nil
	}

	totalSavings := 0.0
	for i := range savings {
		totalSavings += savings[i].Savings
		if s.cfg.Feature.RequireSavingsConfirmed {
			allApproved = allApproved && savings[i].ConfirmedAmt != nil
		}
	}

	fundsNeeded := totalCost - totalSavings - current.DeanCommitted
	if fundsNeeded < 0 {
		fundsNeeded = 0
	}

	return dto.SummaryRow{
		DeptName:     deptName,
		TotalCost:    totalCost,
		TotalSavings: totalSavings,
		Committed:    current.DeanCommitted,
		FundsNeeded:  fundsNeeded,
		AllApproved:  allApproved,
	}
}

// activeCurrentRevision 取部门在活动学期的当前修订
// 无活动学期 → ErrNoActiveSemester；无修订 → ErrNoCurrentCFR
func (s *approvalService) activeCurrentRevision(ctx context.Context, txRepo *repository.Repository, deptName string) (*model.CFRRevision, error) {
	semester, err := txRepo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}

	current, err := txRepo.CFR.GetCurrent(ctx, deptName, semester.Season, semester.CalYear)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCurrentCFR
		}
		s.logger.Error("查询当前修订失败", zap.String("dept", deptName), zap.Error(err))
		return nil, err
	}
	return current, nil
}
