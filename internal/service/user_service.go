package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
)

// ── 用户管理模块业务错误 ──

var ErrCannotDeleteSelf = errors.New("you cannot delete yourself")

// UserService 用户管理业务接口（admin）
type UserService interface {
	// AddUser 新增用户；submitter 角色要求指定已存在的部门，
	// 并在同一事务内写入 submitters 映射
	AddUser(ctx context.Context, req *dto.AddUserRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, username string, req *dto.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, actor *model.Actor, username string) error
	ListUsernames(ctx context.Context) ([]string, error)
	ListDepartments(ctx context.Context) ([]string, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── AddUser ──────────────────────

func (s *userService) AddUser(ctx context.Context, req *dto.AddUserRequest) (*dto.UserResponse, error) {
	if req.Password != req.PasswordConfirm {
		return nil, newValidationError("password_confirm", "Passwords do not match")
	}
	if !model.ValidRole(req.Role) {
		return nil, newValidationError("role", "Role must be 'submitter', 'approver' or 'admin'")
	}
	if req.Role == model.RoleSubmitter {
		if req.DeptName == "" {
			return nil, newValidationError("dept_name", "The dept_name field is required for submitters")
		}
		if _, err := s.repo.Department.GetByName(ctx, req.DeptName); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			s.logger.Error("查询部门失败", zap.String("dept", req.DeptName), zap.Error(err))
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		BannerID:     req.BannerID,
		Role:         req.Role,
		Email:        req.Email,
	}

	// 用户行与 submitter 映射同一事务写入
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.User.Create(ctx, user); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newValidationError("username", "Username already exists")
		}
		s.logger.Error("创建用户失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	if req.Role == model.RoleSubmitter {
		submitter := &model.Submitter{Username: req.Username, DeptName: req.DeptName}
		if err := txRepo.User.CreateSubmitter(ctx, submitter); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("创建提交者映射失败", zap.String("username", req.Username), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("用户已创建", zap.String("username", req.Username), zap.String("role", req.Role))

	return &dto.UserResponse{
		Username: user.Username,
		Role:     user.Role,
		DeptName: req.DeptName,
		Email:    user.Email,
	}, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *userService) ChangePassword(ctx context.Context, username string, req *dto.ChangePasswordRequest) error {
	if req.Password != req.PasswordConfirm {
		return newValidationError("password_confirm", "Passwords do not match")
	}

	if _, err := s.repo.User.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("username", username), zap.Error(err))
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	if err := s.repo.User.UpdatePassword(ctx, username, string(hash)); err != nil {
		s.logger.Error("更新密码失败", zap.String("username", username), zap.Error(err))
		return err
	}

	s.logger.Info("密码已更新", zap.String("username", username))
	return nil
}

// ────────────────────── DeleteUser ──────────────────────

func (s *userService) DeleteUser(ctx context.Context, actor *model.Actor, username string) error {
	if actor.Username == username {
		return ErrCannotDeleteSelf
	}

	if _, err := s.repo.User.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := s.repo.User.Delete(ctx, username); err != nil {
		s.logger.Error("删除用户失败", zap.String("username", username), zap.Error(err))
		return err
	}

	s.logger.Info("用户已删除", zap.String("username", username), zap.String("by", actor.Username))
	return nil
}

// ────────────────────── ListUsernames ──────────────────────

func (s *userService) ListUsernames(ctx context.Context) ([]string, error) {
	usernames, err := s.repo.User.ListUsernames(ctx)
	if err != nil {
		s.logger.Error("列出用户名失败", zap.Error(err))
		return nil, err
	}
	return usernames, nil
}

// ────────────────────── ListDepartments ──────────────────────

func (s *userService) ListDepartments(ctx context.Context) ([]string, error) {
	departments, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	names := make([]string, 0, len(departments))
	for i := range departments {
		names = append(names, departments[i].DeptName)
	}
	return names, nil
}
