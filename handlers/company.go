package handlers

import (
	"net/http"

	"alumni-connect/models"
	"alumni-connect/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCompanies 获取公司列表
func GetCompanies(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.Model(&models.Company{}).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var companies []models.Company
		if err := db.Find(&companies).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": companies, "count": count})
	}
}

// CreateCompanyRequest 创建公司请求
type CreateCompanyRequest struct {
	Name    string  `json:"name" binding:"required"`
	LogoURL *string `json:"logoUrl"`
}

// CreateCompany 显式创建公司
func CreateCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCompanyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		var existing models.Company
		if err := db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "该公司已存在"})
			return
		}

		company := models.Company{
			Name:    req.Name,
			LogoURL: req.LogoURL,
		}

		if err := db.Create(&company).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": company})
	}
}

// GetCompany 按名称查询公司
func GetCompany(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		var company models.Company
		if err := db.Where("name = ?", name).First(&company).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "公司不存在"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": company})
	}
}

// EmployeeCount 公司在职人数统计行
type EmployeeCount struct {
	CompanyName   string `json:"companyName"`
	EmployeeCount int64  `json:"employeeCount"`
}

// GetEmployeeCounts 统计各公司在职人数，按人数降序
func GetEmployeeCounts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var counts []EmployeeCount
		err := db.Table("companies").
			Select("companies.name AS company_name, COUNT(users.uuid) AS employee_count").
			Joins("LEFT JOIN users ON users.current_company = companies.name").
			Group("companies.name").
			Order("employee_count DESC").
			Scan(&counts).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": counts, "count": len(counts)})
	}
}

// GetCurrentEmployees 获取某公司当前在职的用户（不含调用者本人）
func GetCurrentEmployees(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		callerUUID, _ := utils.CurrentUserUUID(c)

		tx := db.Model(&models.User{}).
			Where("current_company = ? AND uuid != ?", name, callerUUID)

		var count int64
		if err := tx.Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var users []models.User
		if err := tx.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": users, "count": count})
	}
}

// GetAllEmployees 获取在某公司有过就职记录的所有用户
func GetAllEmployees(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")

		// 先取该公司所有就职记录对应的用户ID
		var userUUIDs []string
		if err := db.Model(&models.Employment{}).
			Distinct("user_uuid").
			Where("company_name = ?", name).
			Pluck("user_uuid", &userUUIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var users []models.User
		if len(userUUIDs) > 0 {
			if err := db.Where("uuid IN ?", userUUIDs).Find(&users).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": users, "count": len(users)})
	}
}
