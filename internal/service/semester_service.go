package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
)

// SemesterService 学期业务接口
type SemesterService interface {
	List(ctx context.Context) ([]dto.SemesterResponse, error)
	GetActive(ctx context.Context) (*dto.SemesterResponse, error)
	// Add 新增一个未激活学期；重复新增返回 ValidationError
	Add(ctx context.Context, req *dto.AddSemesterRequest) (*dto.SemesterResponse, error)
	// SetActive 切换活动学期：同一事务内清除旧激活位再设置目标学期。
	// 目标学期行不存在返回 ValidationError（必须先 Add 再激活）。
	SetActive(ctx context.Context, req *dto.SetActiveSemesterRequest) error
}

type semesterService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, notifier: notifier, logger: logger}
}

// parseSemesterKey 校验 season/year 输入
func parseSemesterKey(season, year string) (string, int, error) {
	if !model.ValidSeason(season) {
		return "", 0, newValidationError("season", "'season' must be 'Spring', 'Summer' or 'Fall'")
	}
	calYear, err := strconv.Atoi(year)
	if err != nil {
		return "", 0, newValidationError("year", "'year' must be an integer")
	}
	return season, calYear, nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context) ([]dto.SemesterResponse, error) {
	semesters, err := s.repo.Semester.List(ctx)
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, dto.SemesterResponse{
			Season:  semesters[i].Season,
			CalYear: semesters[i].CalYear,
			Active:  semesters[i].Active,
		})
	}
	return result, nil
}

// ────────────────────── GetActive ──────────────────────

func (s *semesterService) GetActive(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveSemester
		}
		s.logger.Error("查询活动学期失败", zap.Error(err))
		return nil, err
	}

	return &dto.SemesterResponse{
		Season:  semester.Season,
		CalYear: semester.CalYear,
		Active:  semester.Active,
	}, nil
}

// ────────────────────── Add ──────────────────────

func (s *semesterService) Add(ctx context.Context, req *dto.AddSemesterRequest) (*dto.SemesterResponse, error) {
	season, calYear, err := parseSemesterKey(req.Season, req.Year)
	if err != nil {
		return nil, err
	}

	semester := &model.Semester{Season: season, CalYear: calYear}
	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("semester", "Semester already exists")
		}
		s.logger.Error("创建学期失败", zap.String("season", season), zap.Int("year", calYear), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学期已创建", zap.String("season", season), zap.Int("year", calYear))

	return &dto.SemesterResponse{Season: season, CalYear: calYear, Active: false}, nil
}

// ────────────────────── SetActive ──────────────────────

func (s *semesterService) SetActive(ctx context.Context, req *dto.SetActiveSemesterRequest) error {
	season, calYear, err := parseSemesterKey(req.Season, req.Year)
	if err != nil {
		return err
	}

	// 目标学期行必须已存在
	if _, err := s.repo.Semester.Get(ctx, season, calYear); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("semester", "Semester does not exist, add it before activating")
		}
		s.logger.Error("查询学期失败", zap.String("season", season), zap.Int("year", calYear), zap.Error(err))
		return err
	}

	// 事务保证 ClearActive + SetActive 原子执行
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Semester.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除活动学期失败", zap.Error(err))
		return err
	}

	if err := txRepo.Semester.SetActive(ctx, season, calYear); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("激活学期失败", zap.String("season", season), zap.Int("year", calYear), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	s.logger.Info("活动学期已切换", zap.String("season", season), zap.Int("year", calYear))

	s.notifier.NotifySemesterOpen(season)
	return nil
}
