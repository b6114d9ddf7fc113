package handler

import (
	"github.com/camtauxe/nmsu-cfr/internal/service"
)

// Handler 所有 HTTP 处理器的聚合入口
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Semester *SemesterHandler
	CFR      *CFRHandler
	Approval *ApprovalHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		User:     NewUserHandler(svc.User),
		Semester: NewSemesterHandler(svc.Semester),
		CFR:      NewCFRHandler(svc.CFR),
		Approval: NewApprovalHandler(svc.Approval),
		Export:   NewExportHandler(svc.Export),
	}
}
