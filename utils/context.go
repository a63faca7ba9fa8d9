package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CurrentUserUUID 获取当前登录用户的UUID
func CurrentUserUUID(c *gin.Context) (uuid.UUID, bool) {
	userUUIDStr, exists := c.Get("user_uuid")
	if !exists {
		return uuid.Nil, false
	}

	userUUID, err := uuid.Parse(userUUIDStr.(string))
	if err != nil {
		return uuid.Nil, false
	}

	return userUUID, true
}

// CurrentUserEmail 获取当前登录用户的邮箱
func CurrentUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	return email.(string)
}

// IsAdmin 检查当前用户是否是管理员
func IsAdmin(c *gin.Context) bool {
	isAdmin, exists := c.Get("is_admin")
	if !exists {
		return false
	}
	return isAdmin.(bool)
}
