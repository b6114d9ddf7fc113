package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	List(ctx context.Context) ([]model.Department, error)
	GetByName(ctx context.Context, name string) (*model.Department, error)
	// LockByName 以 SELECT ... FOR UPDATE 锁定部门行
	// 必须在事务内调用；用于串行化同一部门的修订创建
	LockByName(ctx context.Context, name string) (*model.Department, error)
	Create(ctx context.Context, dept *model.Department) error
}

type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo 创建 DepartmentRepository 实例
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	err := r.db.WithContext(ctx).
		Order("dept_name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *departmentRepo) GetByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("dept_name = ?", name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) LockByName(ctx context.Context, name string) (*model.Department, error) {
	var dept model.Department
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("dept_name = ?", name).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) Create(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Create(dept).Error
}
