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

// GetInterviews 获取全部面试记录
func GetInterviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var count int64
		if err := db.Model(&models.Interview{}).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		var interviews []models.Interview
		if err := db.Find(&interviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": interviews, "count": count})
	}
}

// InterviewRequest 面试记录请求，日期格式YYYY-MM-DD
type InterviewRequest struct {
	CompanyName string `json:"companyName" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Season      string `json:"season" binding:"required"`
	Passed      bool   `json:"passed"`
	Note        string `json:"note"`
	Date        string `json:"date" binding:"required"`
}

func buildInterview(req InterviewRequest, userUUID uuid.UUID) (models.Interview, string) {
	if !auth.ValidateSeason(req.Season) {
		return models.Interview{}, "面试季节不正确"
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return models.Interview{}, "面试日期格式错误"
	}

	interviewUUID, err := uuid.NewUUID()
	if err != nil {
		return models.Interview{}, "生成记录ID失败"
	}

	return models.Interview{
		UUID:        interviewUUID,
		UserUUID:    userUUID,
		CompanyName: req.CompanyName,
		Role:        req.Role,
		Season:      req.Season,
		Passed:      req.Passed,
		Note:        req.Note,
		Date:        date,
	}, ""
}

// CreateInterview 添加面试记录，公司不存在则自动创建
func CreateInterview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InterviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		interview, msg := buildInterview(req, userUUID)
		if msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msg})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			company := models.Company{Name: req.CompanyName}
			if err := tx.Where("name = ?", req.CompanyName).FirstOrCreate(&company).Error; err != nil {
				return err
			}
			return tx.Create(&interview).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": interview})
	}
}

// BulkInterviewsRequest 批量添加面试记录请求
type BulkInterviewsRequest struct {
	Data []InterviewRequest `json:"data" binding:"required"`
}

// CreateInterviewsBulk 批量添加面试记录，任一条校验失败则全部回滚
func CreateInterviewsBulk(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkInterviewsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}
		if len(req.Data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "记录列表不能为空"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		interviews := make([]models.Interview, 0, len(req.Data))
		for _, item := range req.Data {
			if item.CompanyName == "" || item.Role == "" || item.Date == "" {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
				return
			}
			interview, msg := buildInterview(item, userUUID)
			if msg != "" {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": msg})
				return
			}
			interviews = append(interviews, interview)
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for i := range interviews {
				company := models.Company{Name: interviews[i].CompanyName}
				if err := tx.Where("name = ?", interviews[i].CompanyName).FirstOrCreate(&company).Error; err != nil {
					return err
				}
				if err := tx.Create(&interviews[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": interviews, "count": len(interviews)})
	}
}
