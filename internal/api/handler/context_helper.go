package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/pkg/jwt"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

// MustGetUsername 从上下文获取当前用户名，缺失时写 401 并返回 false
func MustGetUsername(c *gin.Context) (string, bool) {
	v, exists := c.Get("username")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return v.(string), true
}

// MustGetRole 从上下文获取当前角色，缺失时写 401 并返回 false
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return v.(string), true
}

// MustGetDeptName 从上下文获取当前部门名（仅 submitter 非空），
// 缺失时写 401 并返回 false
func MustGetDeptName(c *gin.Context) (string, bool) {
	v, exists := c.Get("dept_name")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return v.(string), true
}

// MustGetClaims 从上下文获取完整 JWT 声明（登出时需要 jti 与过期时间）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return v.(*jwt.Claims), true
}

// MustGetActor 还原当前操作者，任一字段缺失时写 401 并返回 false
func MustGetActor(c *gin.Context) (*model.Actor, bool) {
	username, ok := MustGetUsername(c)
	if !ok {
		return nil, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return nil, false
	}
	deptName, ok := MustGetDeptName(c)
	if !ok {
		return nil, false
	}
	return &model.Actor{Username: username, Role: role, DeptName: deptName}, true
}
