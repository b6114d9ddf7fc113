package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
	pkgerrors "github.com/camtauxe/nmsu-cfr/pkg/errors"
)

// CFRRepository 修订账本数据访问接口
type CFRRepository interface {
	// GetCurrent 查询部门在指定学期的当前修订（最大修订号）
	GetCurrent(ctx context.Context, deptName, season string, calYear int) (*model.CFRRevision, error)
	// ListRevisions 查询部门在指定学期的全部修订（修订号降序）
	ListRevisions(ctx context.Context, deptName, season string, calYear int) ([]model.CFRRevision, error)
	// Create 插入新修订行
	// 并发提交争用同一修订号时复合主键冲突，返回 ErrRevisionConflict
	Create(ctx context.Context, revision *model.CFRRevision) error
	// UpdateDeanCommitted 更新指定修订的承诺金额（修订行唯一可变字段）
	UpdateDeanCommitted(ctx context.Context, key model.RevisionKey, amount float64) error
}

type cfrRepo struct {
	db *gorm.DB
}

// NewCFRRepo 创建 CFRRepository 实例
func NewCFRRepo(db *gorm.DB) CFRRepository {
	return &cfrRepo{db: db}
}

func (r *cfrRepo) GetCurrent(ctx context.Context, deptName, season string, calYear int) (*model.CFRRevision, error) {
	var revision model.CFRRevision
	err := r.db.WithContext(ctx).
		Where("dept_name = ? AND season = ? AND cal_year = ?", deptName, season, calYear).
		Order("revision_num DESC").
		First(&revision).Error
	if err != nil {
		return nil, err
	}
	return &revision, nil
}

func (r *cfrRepo) ListRevisions(ctx context.Context, deptName, season string, calYear int) ([]model.CFRRevision, error) {
	var revisions []model.CFRRevision
	err := r.db.WithContext(ctx).
		Where("dept_name = ? AND season = ? AND cal_year = ?", deptName, season, calYear).
		Order("revision_num DESC").
		Find(&revisions).Error
	return revisions, err
}

func (r *cfrRepo) Create(ctx context.Context, revision *model.CFRRevision) error {
	err := r.db.WithContext(ctx).Create(revision).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrRevisionConflict
	}
	return err
}

func (r *cfrRepo) UpdateDeanCommitted(ctx context.Context, key model.RevisionKey, amount float64) error {
	return r.db.WithContext(ctx).
		Model(&model.CFRRevision{}).
		Where("dept_name = ? AND season = ? AND cal_year = ? AND revision_num = ?",
			key.DeptName, key.Season, key.CalYear, key.RevisionNum).
		Update("dean_committed", amount).Error
}
