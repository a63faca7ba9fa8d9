package handlers

import (
	"net/http"
	"strings"

	"alumni-connect/auth"
	"alumni-connect/models"
	"alumni-connect/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthMiddleware 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Header获取Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "缺少Authorization头"})
			c.Abort()
			return
		}

		// 检查Bearer格式
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Authorization格式错误"})
			c.Abort()
			return
		}

		// 解析并验证Token
		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			if err == auth.ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Token已过期"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Token无效"})
			}
			c.Abort()
			return
		}

		// 将用户信息存入Context
		c.Set("user_uuid", claims.UserUUID)
		c.Set("user_email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)

		c.Next()
	}
}

// RequireAdmin 管理员权限中间件
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "没有权限"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"fullName"`
}

// Register 用户注册
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		// 验证密码强度
		if err := auth.ValidatePassword(req.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "密码长度需在8到40位之间"})
			return
		}

		if req.FullName != nil && !auth.ValidateFullName(*req.FullName) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "姓名格式不正确"})
			return
		}

		// 检查邮箱是否已注册
		var existingUser models.User
		if err := db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "该邮箱已被注册"})
			return
		}

		userUUID, err := uuid.NewUUID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "生成用户ID失败"})
			return
		}

		// 加密密码
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		user := models.User{
			UUID:     userUUID,
			Email:    req.Email,
			FullName: req.FullName,
			PassWord: hashedPassword,
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		// 注册后直接发Token
		token, err := auth.GenerateToken(user.UUID.String(), user.Email, user.IsAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok": true,
			"data": gin.H{
				"userId": user.UUID.String(),
				"token":  token,
			},
		})
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "邮箱或密码错误"})
			return
		}

		// 验证密码
		if err := auth.CheckPassword(req.Password, user.PassWord); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "邮箱或密码错误"})
			return
		}

		token, err := auth.GenerateToken(user.UUID.String(), user.Email, user.IsAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ok": true,
			"data": gin.H{
				"token": token,
				"user":  user,
			},
		})
	}
}

// GetCurrentUser 获取当前用户信息
func GetCurrentUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var user models.User
		if err := db.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "用户不存在"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
	}
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword 修改密码
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var user models.User
		if err := db.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "用户不存在"})
			return
		}

		// 验证旧密码
		if err := auth.CheckPassword(req.OldPassword, user.PassWord); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "旧密码错误"})
			return
		}

		if err := auth.ValidatePassword(req.NewPassword); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "新密码长度需在8到40位之间"})
			return
		}

		hashedPassword, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		if err := db.Model(&user).Update("password", hashedPassword).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
