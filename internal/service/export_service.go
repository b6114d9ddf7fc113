package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 导出模块业务错误 ──

var ErrExportNoData = errors.New("no funding requests to export")

// ExportService 导出业务接口
//
// 审批汇总导出为 Excel (.xlsx)：第一个 Sheet 是经费汇总表，
// 之后每个部门一个 Sheet 列出其当前修订的课程明细。
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response。
type ExportService interface {
	ExportSummary(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	approval ApprovalService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(approval ApprovalService, logger *zap.Logger) ExportService {
	return &exportService{approval: approval, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSummary — 导出审批汇总为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportSummary(ctx context.Context) (*bytes.Buffer, string, error) {
	data, err := s.approval.Summary(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(data.Summary) == 0 {
		return nil, "", ErrExportNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	// 1. 汇总 Sheet
	const summarySheet = "Summary"
	f.SetSheetName(f.GetSheetName(0), summarySheet)

	summaryHeader := []interface{}{"Department", "Total Cost", "Total Savings", "Committed", "Funds Needed", "All Approved"}
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		s.logger.Error("写入汇总表头失败", zap.Error(err))
		return nil, "", err
	}

	for i, row := range data.Summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.DeptName,
			row.TotalCost,
			row.TotalSavings,
			row.Committed,
			row.FundsNeeded,
			row.AllApproved,
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			s.logger.Error("写入汇总行失败", zap.String("dept", row.DeptName), zap.Error(err))
			return nil, "", err
		}
	}

	// 2. 每个部门一个课程明细 Sheet
	courseHeader := []interface{}{
		"Priority", "Course", "Sec", "Mini Session", "Online", "Students",
		"Instructor", "Banner ID", "Rank", "Cost", "Reason", "Commitment Code", "Approver",
	}
	for _, row := range data.Summary {
		// Sheet 名最长 31 字符
		sheet := row.DeptName
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if _, err := f.NewSheet(sheet); err != nil {
			s.logger.Error("创建部门 Sheet 失败", zap.String("dept", row.DeptName), zap.Error(err))
			return nil, "", err
		}

		if err := f.SetSheetRow(sheet, "A1", &courseHeader); err != nil {
			s.logger.Error("写入课程表头失败", zap.String("dept", row.DeptName), zap.Error(err))
			return nil, "", err
		}

		for i, course := range data.Courses[row.DeptName] {
			yesNo := func(b bool) string {
				if b {
					return "Yes"
				}
				return "No"
			}
			code := ""
			if course.CommitmentCode != nil {
				code = *course.CommitmentCode
			}
			approver := ""
			if course.Approver != nil {
				approver = *course.Approver
			}

			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			values := []interface{}{
				course.Priority,
				course.Course,
				course.Sec,
				yesNo(course.MiniSession),
				yesNo(course.OnlineCourse),
				course.NumStudents,
				course.Instructor,
				course.BannerID,
				course.InstRank,
				course.Cost,
				course.Reason,
				code,
				approver,
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				s.logger.Error("写入课程行失败", zap.String("dept", row.DeptName), zap.Error(err))
				return nil, "", err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("cfr_summary_%d_depts.xlsx", len(data.Summary))
	return buf, filename, nil
}
