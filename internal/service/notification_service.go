package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
	"github.com/camtauxe/nmsu-cfr/pkg/mail"
)

// NotificationService 邮件通知接口
//
// 所有方法均为事务提交后的尽力而为通知：异步执行，失败仅记日志，
// 永不向调用方返回错误。
type NotificationService interface {
	// NotifyNewCFR 新建 CFR 时通知本部门提交者与全体审批者
	NotifyNewCFR(deptName string)
	// NotifyRevision CFR 修订时通知本部门提交者与全体审批者
	NotifyRevision(deptName string)
	// NotifyStatusUpdate 审批动作后通知本部门提交者
	NotifyStatusUpdate(deptName string)
	// NotifySemesterOpen 学期开放时通知全体用户
	NotifySemesterOpen(season string)
}

type notificationService struct {
	repo   *repository.Repository
	sender mail.Sender
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, sender mail.Sender, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, sender: sender, logger: logger}
}

const notifyTimeout = 10 * time.Second

func (s *notificationService) NotifyNewCFR(deptName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		s.sendToDept(ctx, deptName,
			fmt.Sprintf("%s CFR Submission", deptName),
			fmt.Sprintf("Your Course Funding Request for %s has been submitted.", deptName))
		s.sendToApprovers(ctx,
			fmt.Sprintf("%s CFR Submission", deptName),
			fmt.Sprintf("A Course Funding Request for %s has been submitted.", deptName))
	}()
}

func (s *notificationService) NotifyRevision(deptName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		s.sendToDept(ctx, deptName,
			fmt.Sprintf("%s CFR Revision", deptName),
			fmt.Sprintf("Your revision has been submitted for %s.", deptName))
		s.sendToApprovers(ctx,
			fmt.Sprintf("%s CFR Revision", deptName),
			fmt.Sprintf("A revision has been made to %s's Course Funding Request.", deptName))
	}()
}

func (s *notificationService) NotifyStatusUpdate(deptName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		s.sendToDept(ctx, deptName,
			fmt.Sprintf("%s CFR Status Update", deptName),
			fmt.Sprintf("The status of %s's Course Funding Request has been determined.", deptName))
	}()
}

func (s *notificationService) NotifySemesterOpen(season string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		emails, err := s.repo.User.AllEmails(ctx)
		if err != nil {
			s.logger.Warn("查询全体用户邮箱失败", zap.Error(err))
			return
		}
		s.send(emails, "CFR season now open",
			fmt.Sprintf("Course funding request season for %s is now open", season))
	}()
}

// ── 内部辅助方法 ──

func (s *notificationService) sendToDept(ctx context.Context, deptName, subject, body string) {
	emails, err := s.repo.User.EmailsByDept(ctx, deptName)
	if err != nil {
		s.logger.Warn("查询部门提交者邮箱失败", zap.String("dept", deptName), zap.Error(err))
		return
	}
	s.send(emails, subject, body)
}

func (s *notificationService) sendToApprovers(ctx context.Context, subject, body string) {
	emails, err := s.repo.User.EmailsByRole(ctx, model.RoleApprover)
	if err != nil {
		s.logger.Warn("查询审批者邮箱失败", zap.Error(err))
		return
	}
	s.send(emails, subject, body)
}

func (s *notificationService) send(to []string, subject, body string) {
	if len(to) == 0 {
		return
	}
	if err := s.sender.Send(to, subject, body); err != nil {
		s.logger.Warn("邮件发送失败", zap.String("subject", subject), zap.Error(err))
	}
}
