package handlers

import (
	"net/http"
	"time"

	"alumni-connect/auth"
	"alumni-connect/models"
	"alumni-connect/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// GetEmployments 获取当前用户的就职记录
func GetEmployments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var count int64
		if err := db.Model(&models.Employment{}).Where("user_uuid = ?", userUUID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var employments []models.Employment
		if err := db.Where("user_uuid = ?", userUUID).Find(&employments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": employments, "count": count})
	}
}

// AddEmploymentRequest 添加就职记录请求，日期格式YYYY-MM-DD
type AddEmploymentRequest struct {
	CompanyName string  `json:"companyName" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	Start       string  `json:"start" binding:"required"`
	End         *string `json:"end"`
}

// AddEmployment 添加就职记录
// 公司不存在则自动创建；End为空表示在职，会把用户CurrentCompany指向该公司
// 公司创建、记录写入、派生字段同步在同一事务内提交
func AddEmployment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddEmploymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		// 验证就职类型
		if !auth.ValidateEmploymentType(req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "就职类型只能是internship或full time"})
			return
		}

		start, err := time.Parse(dateLayout, req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "开始日期格式错误"})
			return
		}

		var end *time.Time
		if req.End != nil && *req.End != "" {
			parsed, err := time.Parse(dateLayout, *req.End)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "结束日期格式错误"})
				return
			}
			if parsed.Before(start) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "结束日期不能早于开始日期"})
				return
			}
			end = &parsed
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		employmentUUID, err := uuid.NewUUID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "生成记录ID失败"})
			return
		}

		employment := models.Employment{
			UUID:        employmentUUID,
			UserUUID:    userUUID,
			CompanyName: req.CompanyName,
			Type:        req.Type,
			Start:       start,
			End:         end,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// 公司不存在则创建
			company := models.Company{Name: req.CompanyName}
			if err := tx.Where("name = ?", req.CompanyName).FirstOrCreate(&company).Error; err != nil {
				return err
			}

			if err := tx.Create(&employment).Error; err != nil {
				return err
			}

			// 在职记录同步CurrentCompany
			if employment.End == nil {
				if err := tx.Model(&models.User{}).
					Where("uuid = ?", userUUID).
					Update("current_company", employment.CompanyName).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": employment})
	}
}

// DeleteEmployment 删除就职记录
// 如果被删记录正是CurrentCompany的来源，同一事务内把CurrentCompany清空
func DeleteEmployment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		employmentUUID, err := auth.ParseUUIDString(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "记录ID格式错误"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var employment models.Employment
		if err := db.Where("uuid = ?", employmentUUID).First(&employment).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "就职记录不存在"})
			return
		}

		// 只能删除自己的记录
		if employment.UserUUID != userUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "没有权限删除该记录"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			var user models.User
			if err := tx.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
				return err
			}

			if user.CurrentCompany != nil && *user.CurrentCompany == employment.CompanyName {
				if err := tx.Model(&user).Update("current_company", nil).Error; err != nil {
					return err
				}
			}

			return tx.Delete(&employment).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": employment})
	}
}
