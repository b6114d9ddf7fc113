package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Semester   SemesterRepository
	Department DepartmentRepository
	User       UserRepository
	CFR        CFRRepository
	Course     CourseRepository
	Savings    SavingsRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Semester:   NewSemesterRepo(db),
		Department: NewDepartmentRepo(db),
		User:       NewUserRepo(db),
		CFR:        NewCFRRepo(db),
		Course:     NewCourseRepo(db),
		Savings:    NewSavingsRepo(db),
		db:         db,
	}
}

// BeginTx 开启一个数据库事务
// 单元测试中以 mock 接口构造的聚合没有真实连接，返回 nil 事务，
// 调用方需在 tx 为 nil 时跳过 Commit/Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到给定事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
