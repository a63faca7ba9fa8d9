package handlers

import (
	"errors"
	"net/http"

	"alumni-connect/auth"
	"alumni-connect/models"
	"alumni-connect/smtp"
	"alumni-connect/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// displayName 展示名，没填姓名时退回邮箱
func displayName(user *models.User) string {
	if user.FullName != nil && *user.FullName != "" {
		return *user.FullName
	}
	return user.Email
}

// preferredEmailOf 查用户的首选邮箱，没有则返回nil
func preferredEmailOf(db *gorm.DB, userUUID uuid.UUID) *models.Email {
	var email models.Email
	if err := db.Where("user_uuid = ? AND preferred = ?", userUUID, true).First(&email).Error; err != nil {
		return nil
	}
	return &email
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateConnectionRequestBody 创建连接请求
type CreateConnectionRequestBody struct {
	RequesterID string `json:"requesterId" binding:"required"`
	RequestedID string `json:"requestedId" binding:"required"`
	Message     string `json:"message"`
}

// CreateConnectionRequest 发起连接请求
// 拒绝替他人发起、向自己发起、同方向重复、反向已存在四种情况；
// PairKey唯一索引在并发下兜底后两种。写入成功后尽力发送通知邮件，
// 发送失败只记日志，不影响已提交的请求
func CreateConnectionRequest(db *gorm.DB, mailer smtp.Mailer, frontendHost string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateConnectionRequestBody
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "参数校验失败"})
			return
		}

		requesterUUID, err := auth.ParseUUIDString(req.RequesterID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "用户ID格式错误"})
			return
		}
		requestedUUID, err := auth.ParseUUIDString(req.RequestedID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "用户ID格式错误"})
			return
		}

		// 只能以自己的身份发起
		callerUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}
		if requesterUUID != callerUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "只能以自己的身份发起连接请求"})
			return
		}

		// 不能向自己发起
		if requesterUUID == requestedUUID {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "不能向自己发起连接请求"})
			return
		}

		var requestedUser models.User
		if err := db.Where("uuid = ?", requestedUUID).First(&requestedUser).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "目标用户不存在"})
			return
		}

		// 同方向重复
		var existing models.Request
		if err := db.Where("requester_uuid = ? AND requested_uuid = ?", requesterUUID, requestedUUID).
			First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "已向该用户发起过连接请求"})
			return
		}

		// 反向已存在
		if err := db.Where("requester_uuid = ? AND requested_uuid = ?", requestedUUID, requesterUUID).
			First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "对方已向你发起连接请求"})
			return
		}

		requestUUID, err := uuid.NewUUID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "生成请求ID失败"})
			return
		}

		request := models.Request{
			UUID:          requestUUID,
			RequesterUUID: requesterUUID,
			RequestedUUID: requestedUUID,
			Message:       req.Message,
		}

		if err := db.Create(&request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "两人之间已存在待处理的连接请求"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		// 通知目标用户，要求开启了邮件且对方有首选邮箱
		if mailer != nil {
			if preferred := preferredEmailOf(db, requestedUUID); preferred != nil {
				var requester models.User
				if err := db.Where("uuid = ?", requesterUUID).First(&requester).Error; err == nil {
					gradYear := 0
					if requester.GraduationYear != nil {
						gradYear = *requester.GraduationYear
					}
					mail := smtp.ConnectionRequestMail{
						To:                preferred.Email,
						RequestedName:     displayName(&requestedUser),
						RequesterName:     displayName(&requester),
						RequesterRole:     strOrEmpty(requester.CurrentRole),
						RequesterCompany:  strOrEmpty(requester.CurrentCompany),
						RequesterLocation: strOrEmpty(requester.Location),
						RequesterGradYear: gradYear,
						Message:           req.Message,
						RequestLink:       frontendHost + "/connections?request=" + request.UUID.String(),
					}
					if err := mailer.SendConnectionRequest(mail); err != nil {
						log.Error().Err(err).Str("to", preferred.Email).Msg("发送连接请求通知失败")
					}
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": request})
	}
}

// WithdrawConnectionRequest 撤回连接请求，只有发起者可以撤回
func WithdrawConnectionRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestUUID, err := auth.ParseUUIDString(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "请求ID格式错误"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var request models.Request
		if err := db.Where("uuid = ?", requestUUID).First(&request).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "连接请求不存在"})
			return
		}

		if request.RequesterUUID != userUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "只能撤回自己发起的连接请求"})
			return
		}

		if err := db.Delete(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// AcceptConnectionRequest 接受连接请求
// 删除待处理请求和写入台账在同一事务内提交；删除行数为0说明请求已被
// 并发接受或撤回，直接按不存在处理。提交后尽力通知发起者
func AcceptConnectionRequest(db *gorm.DB, mailer smtp.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestUUID, err := auth.ParseUUIDString(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "请求ID格式错误"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var request models.Request
		if err := db.Where("uuid = ?", requestUUID).First(&request).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "连接请求不存在"})
			return
		}

		// 只有被请求方可以接受
		if request.RequestedUUID != userUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "只能接受发给自己的连接请求"})
			return
		}

		var requester models.User
		if err := db.Where("uuid = ?", request.RequesterUUID).First(&requester).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "请求发起者不存在"})
			return
		}

		var accepter models.User
		if err := db.Where("uuid = ?", userUUID).First(&accepter).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "用户不存在"})
			return
		}

		completedUUID, err := uuid.NewUUID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "生成记录ID失败"})
			return
		}

		completed := models.CompletedRequest{
			UUID:          completedUUID,
			RequesterUUID: request.RequesterUUID,
			RequestedUUID: request.RequestedUUID,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			res := tx.Where("uuid = ?", request.UUID).Delete(&models.Request{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return tx.Create(&completed).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "连接请求不存在"})
				return
			}
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "两人之间已存在连接"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		// 通知发起者，附上接受者的联系方式
		if mailer != nil {
			if requesterEmail := preferredEmailOf(db, request.RequesterUUID); requesterEmail != nil {
				contactEmail := ""
				if accepterEmail := preferredEmailOf(db, userUUID); accepterEmail != nil {
					contactEmail = accepterEmail.Email
				}
				mail := smtp.ConnectionAcceptedMail{
					To:            requesterEmail.Email,
					RequesterName: displayName(&requester),
					AcceptedName:  displayName(&accepter),
					ContactEmail:  contactEmail,
					LinkedinURL:   strOrEmpty(accepter.LinkedinURL),
				}
				if err := mailer.SendConnectionAccepted(mail); err != nil {
					log.Error().Err(err).Str("to", requesterEmail.Email).Msg("发送连接接受通知失败")
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": completed})
	}
}

// IgnoreConnectionRequest 忽略连接请求：删除请求，不通知、不入账
func IgnoreConnectionRequest(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestUUID, err := auth.ParseUUIDString(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "请求ID格式错误"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var request models.Request
		if err := db.Where("uuid = ?", requestUUID).First(&request).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "连接请求不存在"})
			return
		}

		// 只有被请求方可以忽略
		if request.RequestedUUID != userUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "只能忽略发给自己的连接请求"})
			return
		}

		if err := db.Delete(&request).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GetPendingRequests 获取发给自己的待处理连接请求
func GetPendingRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}

		var requests []models.Request
		if err := db.Where("requested_uuid = ?", userUUID).Find(&requests).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": requests, "count": len(requests)})
	}
}

// listCompleted 按指定列查询已完成连接，只允许查自己
func listCompleted(db *gorm.DB, column string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetUUID, err := auth.ParseUUIDString(c.Param("user_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "用户ID格式错误"})
			return
		}

		userUUID, ok := utils.CurrentUserUUID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "未登录"})
			return
		}
		if targetUUID != userUUID {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "message": "只能查看自己的连接"})
			return
		}

		var completed []models.CompletedRequest
		if err := db.Where(column+" = ?", targetUUID).Find(&completed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "服务器错误"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "data": completed, "count": len(completed)})
	}
}

// GetAcceptedRequests 获取自己发起且已被接受的连接
func GetAcceptedRequests(db *gorm.DB) gin.HandlerFunc {
	return listCompleted(db, "requester_uuid")
}

// GetAcceptedRequested 获取自己接受过的连接
func GetAcceptedRequested(db *gorm.DB) gin.HandlerFunc {
	return listCompleted(db, "requested_uuid")
}
