package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Get(ctx context.Context, season string, calYear int) (*model.Semester, error)
	GetActive(ctx context.Context) (*model.Semester, error)
	List(ctx context.Context) ([]model.Semester, error)
	Create(ctx context.Context, semester *model.Semester) error
	ClearActive(ctx context.Context) error
	SetActive(ctx context.Context, season string, calYear int) error
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Get(ctx context.Context, season string, calYear int) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("season = ? AND cal_year = ?", season, calYear).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetActive(ctx context.Context) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) List(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("cal_year ASC, season ASC").
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

// ClearActive 将当前活动学期置为非活动
func (r *semesterRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("active = ?", true).
		Update("active", false).Error
}

func (r *semesterRepo) SetActive(ctx context.Context, season string, calYear int) error {
	return r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("season = ? AND cal_year = ?", season, calYear).
		Update("active", true).Error
}
