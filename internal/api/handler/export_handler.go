package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/service"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSummary 导出当前学期全部门经费申请汇总表
// GET /api/v1/export/summary
func (h *ExportHandler) ExportSummary(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSummary(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 16001, "当前学期暂无可导出的经费申请")
	case errors.Is(err, service.ErrNoActiveSemester):
		response.Error(c, http.StatusInternalServerError, 16002, "当前没有开放的申请学期")
	default:
		response.InternalError(c)
	}
}
