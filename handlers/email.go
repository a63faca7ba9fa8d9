package handlers

import (
	"errors"
	"net/http"

	"alumni-connect/auth"
	"alumni-connect/models"
	"alumni-connect/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AddEmailRequest 添加联系邮箱请求
type AddEmailRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Preferred bool   `json:"preferred"`
}

// AddEmail 给当前用户添加联系邮箱
// 邮箱全局唯一；新邮箱设为preferred时，旧preferred在同一事务内被清掉
func AddEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		// 全局唯一检查
		var existing models.Email
		if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "该邮箱已被使用"})
			return
		}

		email := models.Email{
			Email:     req.Email,
			UserUUID:  userUUID,
			Preferred: req.Preferred,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if req.Preferred {
				if err := tx.Model(&models.Email{}).
					Where("user_uuid = ? AND preferred = ?", userUUID, true).
					Update("preferred", false).Error; err != nil {
					return err
				}
			}
			return tx.Create(&email).Error
		})
		if err != nil {
			// 唯一索引兜底并发下的重复写入
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "该邮箱已被使用"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": email})
	}
}

// SetPreferredEmailRequest 切换首选邮箱请求
type SetPreferredEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SetPreferredEmail 切换当前用户的首选邮箱
// 清旧标记和设新标记在同一事务内提交，任一时刻最多一条preferred
func SetPreferredEmail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SetPreferredEmailRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var email models.Email
		if err := db.Where("email = ? AND user_uuid = ?", req.Email, userUUID).First(&email).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "邮箱不存在"})
			return
		}

		// 已经是首选邮箱则直接返回
		if email.Preferred {
			c.JSON(http.StatusOK, gin.H{"ok": true, "data": email})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Email{}).
				Where("user_uuid = ? AND preferred = ?", userUUID, true).
				Update("preferred", false).Error; err != nil {
				return err
			}
			return tx.Model(&email).Update("preferred", true).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": email})
	}
}

// GetUserEmails 获取某用户的联系邮箱列表
func GetUserEmails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetUUID, err := auth.ParseUUIDString(c.Param("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "用户ID格式错误"})
			return
		}

		var count int64
		if err := db.Model(&models.Email{}).Where("user_uuid = ?", targetUUID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var emails []models.Email
		if err := db.Where("user_uuid = ?", targetUUID).Find(&emails).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": emails, "count": count})
	}
}
