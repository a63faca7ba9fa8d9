package handlers

import (
	"net/http"
	"strconv"

	"alumni-connect/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"
	"gorm.io/gorm"
)

// ExportUsers 导出校友名录为Excel（管理员）
func ExportUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []models.User
		if err := db.Order("graduation_year").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("校友名录")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "创建Excel文件失败"})
			return
		}

		// 设置表头
		headers := []string{
			"用户ID", "邮箱", "姓名", "所在地", "毕业年份",
			"当前公司", "职位", "LinkedIn", "个人网站",
			"是否校友", "资料公开", "创建时间",
		}
		headerRow := sheet.AddRow()
		for _, header := range headers {
			headerRow.AddCell().Value = header
		}

		strOr := func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		}

		// 填充数据
		for _, user := range users {
			row := sheet.AddRow()
			row.AddCell().Value = user.UUID.String()
			row.AddCell().Value = user.Email
			row.AddCell().Value = strOr(user.FullName)
			row.AddCell().Value = strOr(user.Location)
			if user.GraduationYear != nil {
				row.AddCell().Value = strconv.Itoa(*user.GraduationYear)
			} else {
				row.AddCell().Value = ""
			}
			row.AddCell().Value = strOr(user.CurrentCompany)
			row.AddCell().Value = strOr(user.CurrentRole)
			row.AddCell().Value = strOr(user.LinkedinURL)
			row.AddCell().Value = strOr(user.PersonalWebsite)
			if user.IsAlumni {
				row.AddCell().Value = "是"
			} else {
				row.AddCell().Value = "否"
			}
			if user.ProfileVisible {
				row.AddCell().Value = "是"
			} else {
				row.AddCell().Value = "否"
			}
			row.AddCell().Value = user.CreatedAt.Format("2006-01-02 15:04:05")
		}

		// 生成文件名
		filename := "alumni_" + uuid.New().String()[:8] + ".xlsx"

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "生成Excel文件失败"})
			return
		}

		c.Status(http.StatusOK)
	}
}
