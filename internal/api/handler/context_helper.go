package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"shiftswap/internal/swap"
	"shiftswap/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// JWT 中间件未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString("user_id")
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetViewer 从 Gin 上下文中构建当前查看者；未知角色视为未认证
func MustGetViewer(c *gin.Context) (swap.Viewer, bool) {
	uid, ok := MustGetUserID(c)
	if !ok {
		return swap.Viewer{}, false
	}
	role, ok := swap.ParseRole(c.GetString("role"))
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return swap.Viewer{}, false
	}
	return swap.Viewer{UserID: uid, Role: role}, true
}

// tokenInfo 当前 Access Token 的 jti 与过期时间
func tokenInfo(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return c.GetString("jti"), t
}
