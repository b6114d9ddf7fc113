package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetSubmitterDept(ctx context.Context, username string) (string, error)
	Create(ctx context.Context, user *model.User) error
	CreateSubmitter(ctx context.Context, submitter *model.Submitter) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Delete(ctx context.Context, username string) error
	ListUsernames(ctx context.Context) ([]string, error)
	// EmailsByDept 某部门所有提交者的邮箱（空邮箱过滤）
	EmailsByDept(ctx context.Context, deptName string) ([]string, error)
	// EmailsByRole 某角色所有用户的邮箱
	EmailsByRole(ctx context.Context, role string) ([]string, error)
	// AllEmails 全部用户的邮箱
	AllEmails(ctx context.Context) ([]string, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetSubmitterDept 查询 submitter 用户所属部门
func (r *userRepo) GetSubmitterDept(ctx context.Context, username string) (string, error) {
	var submitter model.Submitter
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&submitter).Error
	if err != nil {
		return "", err
	}
	return submitter.DeptName, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) CreateSubmitter(ctx context.Context, submitter *model.Submitter) error {
	return r.db.WithContext(ctx).Create(submitter).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash).Error
}

func (r *userRepo) Delete(ctx context.Context, username string) error {
	// submitters 行由外键级联删除
	return r.db.WithContext(ctx).
		Where("username = ?", username).
		Delete(&model.User{}).Error
}

func (r *userRepo) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Order("username ASC").
		Pluck("username", &usernames).Error
	return usernames, err
}

func (r *userRepo) EmailsByDept(ctx context.Context, deptName string) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN submitters s ON s.username = users.username").
		Where("s.dept_name = ? AND users.email IS NOT NULL AND users.email <> ''", deptName).
		Pluck("users.email", &emails).Error
	return emails, err
}

func (r *userRepo) EmailsByRole(ctx context.Context, role string) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role = ? AND email IS NOT NULL AND email <> ''", role).
		Pluck("email", &emails).Error
	return emails, err
}

func (r *userRepo) AllEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email IS NOT NULL AND email <> ''").
		Pluck("email", &emails).Error
	return emails, err
}
