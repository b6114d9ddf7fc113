package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/service"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// UserHandler 用户管理模块 HTTP 处理器（admin）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// AddUser 新增用户
// POST /api/v1/users
func (h *UserHandler) AddUser(c *gin.Context) {
	var req dto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.AddUser(c.Request.Context(), &req)
	if err != nil {
		handleUserError(c, err)
		return
	}

	response.Created(c, result)
}

// ChangePassword 重置指定用户的密码
// PUT /api/v1/users/:username/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), c.Param("username"), &req); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteUser 删除用户（不允许删除自己）
// DELETE /api/v1/users/:username
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	if err := h.userSvc.DeleteUser(c.Request.Context(), actor, c.Param("username")); err != nil {
		handleUserError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListUsernames 查询全部用户名
// GET /api/v1/users
func (h *UserHandler) ListUsernames(c *gin.Context) {
	result, err := h.userSvc.ListUsernames(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListDepartments 查询全部部门名
// GET /api/v1/departments
func (h *UserHandler) ListDepartments(c *gin.Context) {
	result, err := h.userSvc.ListDepartments(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// handleUserError 统一映射用户管理模块的 Service 层错误
func handleUserError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, 12001, verr.Message)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12002, "用户不存在")
	case errors.Is(err, service.ErrCannotDeleteSelf):
		response.Forbidden(c, 12003, "不能删除当前登录用户")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.BadRequest(c, 12004, "部门不存在")
	default:
		response.InternalError(c)
	}
}
