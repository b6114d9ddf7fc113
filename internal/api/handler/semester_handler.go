package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/service"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// List 查询全部学期
// GET /api/v1/semesters
func (h *SemesterHandler) List(c *gin.Context) {
	result, err := h.semesterSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetActive 查询当前活动学期
// GET /api/v1/semesters/active
func (h *SemesterHandler) GetActive(c *gin.Context) {
	result, err := h.semesterSvc.GetActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSemester) {
			response.NotFound(c, 13002, "当前没有活动学期")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Add 新增学期（admin）
// POST /api/v1/semesters
func (h *SemesterHandler) Add(c *gin.Context) {
	var req dto.AddSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.semesterSvc.Add(c.Request.Context(), &req)
	if err != nil {
		handleSemesterError(c, err)
		return
	}

	response.Created(c, result)
}

// SetActive 切换活动学期（admin）
// PUT /api/v1/semesters/active
func (h *SemesterHandler) SetActive(c *gin.Context) {
	var req dto.SetActiveSemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.semesterSvc.SetActive(c.Request.Context(), &req); err != nil {
		handleSemesterError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSemesterError 统一映射学期模块的 Service 层错误
func handleSemesterError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, 13001, verr.Message)
	default:
		response.InternalError(c)
	}
}
