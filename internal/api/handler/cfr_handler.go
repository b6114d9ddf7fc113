package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/service"
	pkgerrors "github.com/camtauxe/nmsu-cfr/pkg/errors"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// CFRHandler 经费申请提交模块 HTTP 处理器
// 提交者只能操作自己部门的申请，部门名取自 JWT 声明而非请求体
type CFRHandler struct {
	cfrSvc service.CFRService
}

// NewCFRHandler 创建 CFRHandler
func NewCFRHandler(cfrSvc service.CFRService) *CFRHandler {
	return &CFRHandler{cfrSvc: cfrSvc}
}

// SubmitCourses 提交课程申请（创建新修订）
// POST /api/v1/cfr/courses
func (h *CFRHandler) SubmitCourses(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.cfrSvc.SubmitCourses(c.Request.Context(), actor, &req)
	if err != nil {
		handleCFRError(c, err)
		return
	}

	response.Created(c, result)
}

// SubmitSavings 提交薪资节余（创建新修订）
// POST /api/v1/cfr/savings
func (h *CFRHandler) SubmitSavings(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.SubmitSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.cfrSvc.SubmitSavings(c.Request.Context(), actor, &req)
	if err != nil {
		handleCFRError(c, err)
		return
	}

	response.Created(c, result)
}

// GetCourses 查询本部门当前修订的课程列表
// GET /api/v1/cfr/courses
func (h *CFRHandler) GetCourses(c *gin.Context) {
	deptName, ok := MustGetDeptName(c)
	if !ok {
		return
	}

	result, err := h.cfrSvc.CurrentCourses(c.Request.Context(), deptName)
	if err != nil {
		handleCFRError(c, err)
		return
	}

	response.OK(c, result)
}

// GetSavings 查询本部门当前修订的薪资节余列表
// GET /api/v1/cfr/savings
func (h *CFRHandler) GetSavings(c *gin.Context) {
	deptName, ok := MustGetDeptName(c)
	if !ok {
		return
	}

	result, err := h.cfrSvc.CurrentSavings(c.Request.Context(), deptName)
	if err != nil {
		handleCFRError(c, err)
		return
	}

	response.OK(c, result)
}

// GetRevisions 查询本部门当前学期的修订历史（新到旧）
// GET /api/v1/cfr/revisions
func (h *CFRHandler) GetRevisions(c *gin.Context) {
	deptName, ok := MustGetDeptName(c)
	if !ok {
		return
	}

	result, err := h.cfrSvc.Revisions(c.Request.Context(), deptName)
	if err != nil {
		handleCFRError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCFRError 统一映射提交模块的 Service 层错误
func handleCFRError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, 14001, verr.Message)
	case errors.Is(err, pkgerrors.ErrRevisionConflict):
		response.Conflict(c, 14002, "提交冲突，请重试")
	case errors.Is(err, service.ErrNoActiveSemester):
		// 活动学期缺失属于系统配置错误，不归咎于请求方
		response.Error(c, http.StatusInternalServerError, 14003, "当前没有开放的申请学期")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 14004, "部门不存在")
	default:
		response.InternalError(c)
	}
}
