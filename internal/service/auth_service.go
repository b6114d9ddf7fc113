package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/camtauxe/nmsu-cfr/config"
	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/repository"
	"github.com/camtauxe/nmsu-cfr/pkg/jwt"
	"github.com/camtauxe/nmsu-cfr/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user does not exist")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 token 的 jti 拉黑至其自然过期；Redis 未配置时降级为空操作
	Logout(ctx context.Context, claims *jwt.Claims) error
	GetCurrentUser(ctx context.Context, username string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
// rdb 可为 nil（降级模式：无 token 黑名单）
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. submitter 角色解析归属部门
	deptName := ""
	if user.Role == model.RoleSubmitter {
		deptName, err = s.repo.User.GetSubmitterDept(ctx, user.Username)
		if err != nil {
			s.logger.Error("查询提交者部门失败", zap.String("username", user.Username), zap.Error(err))
			return nil, err
		}
	}

	// 4. 生成 Token 对
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.Username, user.Role, deptName)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.Username, user.Role, deptName)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录成功", zap.String("username", user.Username), zap.String("role", user.Role))

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User: dto.UserResponse{
			Username: user.Username,
			Role:     user.Role,
			DeptName: deptName,
			Email:    user.Email,
		},
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.rdb == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := s.rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("登出拉黑 token 失败", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}

	s.logger.Info("用户登出", zap.String("username", claims.Username))
	return nil
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	deptName := ""
	if user.Role == model.RoleSubmitter {
		deptName, err = s.repo.User.GetSubmitterDept(ctx, user.Username)
		if err != nil {
			s.logger.Error("查询提交者部门失败", zap.String("username", username), zap.Error(err))
			return nil, err
		}
	}

	return &dto.UserResponse{
		Username: user.Username,
		Role:     user.Role,
		DeptName: deptName,
		Email:    user.Email,
	}, nil
}
