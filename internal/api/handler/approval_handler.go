package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/service"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// ApprovalHandler 审批模块 HTTP 处理器
type ApprovalHandler struct {
	approvalSvc service.ApprovalService
}

// NewApprovalHandler 创建 ApprovalHandler
func NewApprovalHandler(approvalSvc service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalSvc: approvalSvc}
}

// Summary 全部门审批汇总
// GET /api/v1/approver/summary
func (h *ApprovalHandler) Summary(c *gin.Context) {
	result, err := h.approvalSvc.Summary(c.Request.Context())
	if err != nil {
		handleApprovalError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveCourses 批量审批某部门当前修订的课程
// POST /api/v1/approver/courses
func (h *ApprovalHandler) ApproveCourses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ApproveCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.approvalSvc.ApproveCourses(c.Request.Context(), actor, &req)
	if err != nil {
		handleApprovalError(c, err)
		return
	}

	response.OK(c, result)
}

// ApproveSavings 批量审批某部门当前修订的薪资节余
// POST /api/v1/approver/savings
func (h *ApprovalHandler) ApproveSavings(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ApproveSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.approvalSvc.ApproveSavings(c.Request.Context(), actor, &req)
	if err != nil {
		handleApprovalError(c, err)
		return
	}

	response.OK(c, result)
}

// CommitFunds 批量写入部门承诺金额（整批一个事务）
// POST /api/v1/approver/commit
func (h *ApprovalHandler) CommitFunds(c *gin.Context) {
	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.approvalSvc.CommitFunds(c.Request.Context(), &req); err != nil {
		handleApprovalError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleApprovalError 统一映射审批模块的 Service 层错误
func handleApprovalError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, 15001, verr.Message)
	case errors.Is(err, service.ErrNoActiveSemester):
		// 活动学期缺失属于系统配置错误，不归咎于请求方
		response.Error(c, http.StatusInternalServerError, 15002, "当前没有开放的申请学期")
	case errors.Is(err, service.ErrNoCurrentCFR):
		response.NotFound(c, 15003, "该部门在当前学期没有经费申请")
	default:
		response.InternalError(c)
	}
}
