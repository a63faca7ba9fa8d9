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

// GetUsers 获取用户列表（管理员）
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")

		tx := db.Model(&models.User{})

		// 按关键词搜索（姓名或邮箱）
		if query != "" {
			tx = tx.Where("full_name LIKE ? OR email LIKE ?", "%"+query+"%", "%"+query+"%")
		}

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

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"fullName"`
	IsAdmin  bool    `json:"isAdmin"`
	IsAlumni bool    `json:"isAlumni"`
}

// CreateUser 管理员创建用户
func CreateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		if err := auth.ValidatePassword(req.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "密码长度需在8到40位之间"})
			return
		}

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

		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		user := models.User{
			UUID:     userUUID,
			Email:    req.Email,
			FullName: req.FullName,
			IsAdmin:  req.IsAdmin,
			IsAlumni: req.IsAlumni,
			PassWord: hashedPassword,
		}

		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
	}
}

// GetUserDetail 查看用户公开资料
func GetUserDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetUUID, err := auth.ParseUUIDString(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "用户ID格式错误"})
			return
		}

		var user models.User
		if err := db.Where("uuid = ?", targetUUID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "用户不存在"})
			return
		}

		// 未公开的资料只有本人和管理员可见
		callerUUID, _ := utils.CurrentUserUUID(c)
		if !user.ProfileVisible && callerUUID != user.UUID && !utils.IsAdmin(c) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "用户不存在"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
	}
}

// UpdateProfileRequest 更新个人资料请求，全部字段可选
// CurrentCompany不在这里：它是派生字段，只随就职记录变化
type UpdateProfileRequest struct {
	FullName              *string `json:"fullName"`
	Location              *string `json:"location"`
	GraduationYear        *int    `json:"graduationYear"`
	LinkedinURL           *string `json:"linkedinUrl"`
	PersonalWebsite       *string `json:"personalWebsite"`
	ProfileImage          *string `json:"profileImage"`
	Bio                   *string `json:"bio"`
	CurrentRole           *string `json:"currentRole"`
	OpenToCoffeeChats     *bool   `json:"openToCoffeeChats"`
	OpenToMentorship      *bool   `json:"openToMentorship"`
	AvailableForReferrals *bool   `json:"availableForReferrals"`
	IsAlumni              *bool   `json:"isAlumni"`
	ProfileCompleted      *bool   `json:"profileCompleted"`
	ProfileVisible        *bool   `json:"profileVisible"`
}

// UpdateProfile 更新当前用户个人资料
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
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

		if req.FullName != nil && !auth.ValidateFullName(*req.FullName) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "姓名格式不正确"})
			return
		}
		if req.GraduationYear != nil && !auth.ValidateGraduationYear(*req.GraduationYear) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "毕业年份不正确"})
			return
		}

		updates := map[string]interface{}{}
		if req.FullName != nil {
			updates["full_name"] = *req.FullName
		}
		if req.Location != nil {
			updates["location"] = *req.Location
		}
		if req.GraduationYear != nil {
			updates["graduation_year"] = *req.GraduationYear
		}
		if req.LinkedinURL != nil {
			updates["linkedin_url"] = *req.LinkedinURL
		}
		if req.PersonalWebsite != nil {
			updates["personal_website"] = *req.PersonalWebsite
		}
		if req.ProfileImage != nil {
			updates["profile_image"] = *req.ProfileImage
		}
		if req.Bio != nil {
			updates["bio"] = *req.Bio
		}
		if req.CurrentRole != nil {
			updates["current_role"] = *req.CurrentRole
		}
		if req.OpenToCoffeeChats != nil {
			updates["open_to_coffee_chats"] = *req.OpenToCoffeeChats
		}
		if req.OpenToMentorship != nil {
			updates["open_to_mentorship"] = *req.OpenToMentorship
		}
		if req.AvailableForReferrals != nil {
			updates["available_for_referrals"] = *req.AvailableForReferrals
		}
		if req.IsAlumni != nil {
			updates["is_alumni"] = *req.IsAlumni
		}
		if req.ProfileCompleted != nil {
			updates["profile_completed"] = *req.ProfileCompleted
		}
		if req.ProfileVisible != nil {
			updates["profile_visible"] = *req.ProfileVisible
		}

		if len(updates) == 0 {
			c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
			return
		}
		updates["updated_at"] = time.Now()

		if err := db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": user})
	}
}
