package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// SavingsRepository 薪资节余行数据访问接口
type SavingsRepository interface {
	// ListByRevision 查询链接到指定修订的全部节余行（按教师姓名排序）
	ListByRevision(ctx context.Context, key model.RevisionKey) ([]model.SalarySaving, error)
	// FindDuplicate 在指定修订内查找内容完全相同的节余行；无匹配返回 (nil, nil)
	FindDuplicate(ctx context.Context, key model.RevisionKey, saving *model.SalarySaving) (*model.SalarySaving, error)
	// Insert 插入新节余行（回填自增 ID）
	Insert(ctx context.Context, saving *model.SalarySaving) error
	// Link 将节余行链接到修订
	Link(ctx context.Context, savingsID int64, key model.RevisionKey) error
	// ApproveByInstName 按教师姓名在指定修订内原地更新审批字段
	// 返回受影响行数（0 表示该教师不在当前修订中）
	ApproveByInstName(ctx context.Context, key model.RevisionKey, instName string, confirmedAmt *float64, approver string) (int64, error)
}

type savingsRepo struct {
	db *gorm.DB
}

// NewSavingsRepo 创建 SavingsRepository 实例
func NewSavingsRepo(db *gorm.DB) SavingsRepository {
	return &savingsRepo{db: db}
}

func (r *savingsRepo) ListByRevision(ctx context.Context, key model.RevisionKey) ([]model.SalarySaving, error) {
	var savings []model.SalarySaving
	err := r.db.WithContext(ctx).
		Joins("JOIN cfr_savings ON cfr_savings.savings_id = sal_savings.id").
		Where("cfr_savings.dept_name = ? AND cfr_savings.season = ? AND cfr_savings.cal_year = ? AND cfr_savings.revision_num = ?",
			key.DeptName, key.Season, key.CalYear, key.RevisionNum).
		Order("sal_savings.inst_name").
		Find(&savings).Error
	return savings, err
}

func (r *savingsRepo) FindDuplicate(ctx context.Context, key model.RevisionKey, saving *model.SalarySaving) (*model.SalarySaving, error) {
	var found model.SalarySaving
	err := r.db.WithContext(ctx).
		Joins("JOIN cfr_savings ON cfr_savings.savings_id = sal_savings.id").
		Where("cfr_savings.dept_name = ? AND cfr_savings.season = ? AND cfr_savings.cal_year = ? AND cfr_savings.revision_num = ?",
			key.DeptName, key.Season, key.CalYear, key.RevisionNum).
		Where("sal_savings.leave_type = ? AND sal_savings.inst_name = ? AND sal_savings.savings = ? AND sal_savings.notes = ?",
			saving.LeaveType, saving.InstName, saving.Savings, saving.Notes).
		First(&found).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *savingsRepo) Insert(ctx context.Context, saving *model.SalarySaving) error {
	return r.db.WithContext(ctx).Create(saving).Error
}

func (r *savingsRepo) Link(ctx context.Context, savingsID int64, key model.RevisionKey) error {
	link := model.CFRSavingsLink{
		SavingsID:   savingsID,
		DeptName:    key.DeptName,
		Season:      key.Season,
		CalYear:     key.CalYear,
		RevisionNum: key.RevisionNum,
	}
	return r.db.WithContext(ctx).Create(&link).Error
}

func (r *savingsRepo) ApproveByInstName(ctx context.Context, key model.RevisionKey, instName string, confirmedAmt *float64, approver string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SalarySaving{}).
		Where("id IN (?)", r.db.
			Table("cfr_savings").
			Select("savings_id").
			Where("dept_name = ? AND season = ? AND cal_year = ? AND revision_num = ?",
				key.DeptName, key.Season, key.CalYear, key.RevisionNum)).
		Where("inst_name = ?", instName).
		Updates(map[string]interface{}{
			"confirmed_amt": confirmedAmt,
			"approver":      approver,
		})
	return result.RowsAffected, result.Error
}
