package service

import (
	"go.uber.org/zap"

	"github.com/camtauxe/nmsu-cfr/config"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
	"github.com/camtauxe/nmsu-cfr/pkg/jwt"
	"github.com/camtauxe/nmsu-cfr/pkg/mail"
	"github.com/camtauxe/nmsu-cfr/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Semester     SemesterService
	CFR          CFRService
	Approval     ApprovalService
	Export       ExportService
	Notification NotificationService
}

// NewService 创建 Service 聚合
// rdb 可为 nil（降级模式）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	sender mail.Sender,
	logger *zap.Logger,
) *Service {
	notification := NewNotificationService(repo, sender, logger)
	approval := NewApprovalService(cfg, repo, notification, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Semester:     NewSemesterService(repo, notification, logger),
		CFR:          NewCFRService(cfg, repo, notification, logger),
		Approval:     approval,
		Export:       NewExportService(approval, logger),
		Notification: notification,
	}
}
