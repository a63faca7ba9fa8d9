package main

import (
	"net/http"
	"os"

	"alumni-connect/config"
	"alumni-connect/handlers"
	"alumni-connect/middleware"
	"alumni-connect/models"
	"alumni-connect/smtp"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("未找到.env文件，使用现有环境变量")
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()

	cfg := config.Load()

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("数据库连接失败")
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&models.User{},
		&models.Email{},
		&models.Company{},
		&models.Employment{},
		&models.Interview{},
		&models.Request{},
		&models.CompletedRequest{},
	); err != nil {
		log.Fatal().Err(err).Msg("数据库迁移失败")
	}

	// 邮件通知开关关闭时不初始化Mailer，所有通知静默跳过
	var mailer smtp.Mailer
	if cfg.EmailsEnabled {
		mailer = smtp.NewClient(cfg)
	}

	r := gin.Default()
	r.RedirectTrailingSlash = false

	// 跨域中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 基础路由组
	api := r.Group("/api/v1")

	// 登录注册限流：每20秒恢复1次，突发10次
	authLimiter := middleware.NewIPRateLimiter(0.05, 10)

	// 认证与账号
	authRoute := api.Group("/auth")
	{
		authRoute.POST("/register", authLimiter.Middleware(), handlers.Register(db))
		authRoute.POST("/login", authLimiter.Middleware(), handlers.Login(db))
		authRoute.GET("/me", handlers.AuthMiddleware(), handlers.GetCurrentUser(db))
		authRoute.POST("/change-password", handlers.AuthMiddleware(), handlers.ChangePassword(db))
	}

	// 用户
	usersRoute := api.Group("/users")
	{
		usersRoute.GET("", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.GetUsers(db))
		usersRoute.POST("", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.CreateUser(db))
		usersRoute.GET("/:id", handlers.AuthMiddleware(), handlers.GetUserDetail(db))
		usersRoute.PATCH("/me", handlers.AuthMiddleware(), handlers.UpdateProfile(db))
	}

	// 公司
	companiesRoute := api.Group("/companies", handlers.AuthMiddleware())
	{
		companiesRoute.GET("", handlers.GetCompanies(db))
		companiesRoute.POST("", handlers.CreateCompany(db))
		companiesRoute.GET("/employee_counts", handlers.GetEmployeeCounts(db))
		companiesRoute.GET("/current_employees/:name", handlers.GetCurrentEmployees(db))
		companiesRoute.GET("/all_employees/:name", handlers.GetAllEmployees(db))
		companiesRoute.GET("/:name", handlers.GetCompany(db))
	}

	// 就职记录
	employmentRoute := api.Group("/employment", handlers.AuthMiddleware())
	{
		employmentRoute.GET("", handlers.GetEmployments(db))
		employmentRoute.POST("", handlers.AddEmployment(db))
		employmentRoute.DELETE("/:id", handlers.DeleteEmployment(db))
	}

	// 面试记录
	interviewsRoute := api.Group("/interviews", handlers.AuthMiddleware())
	{
		interviewsRoute.GET("", handlers.GetInterviews(db))
		interviewsRoute.POST("", handlers.CreateInterview(db))
		interviewsRoute.POST("/bulk", handlers.CreateInterviewsBulk(db))
	}

	// 联系邮箱
	emailsRoute := api.Group("/emails", handlers.AuthMiddleware())
	{
		emailsRoute.POST("/me", handlers.AddEmail(db))
		emailsRoute.PATCH("/me/preferred", handlers.SetPreferredEmail(db))
		emailsRoute.GET("/:user_id", handlers.GetUserEmails(db))
	}

	// 连接请求
	connectionsRoute := api.Group("/connections", handlers.AuthMiddleware())
	{
		connectionsRoute.POST("", handlers.CreateConnectionRequest(db, mailer, cfg.FrontendHost))
		connectionsRoute.DELETE("/:id", handlers.WithdrawConnectionRequest(db))
		connectionsRoute.POST("/accept/:id", handlers.AcceptConnectionRequest(db, mailer))
		connectionsRoute.POST("/ignore/:id", handlers.IgnoreConnectionRequest(db))
		connectionsRoute.GET("/me/pending", handlers.GetPendingRequests(db))
		connectionsRoute.GET("/:user_id/accepted_requests", handlers.GetAcceptedRequests(db))
		connectionsRoute.GET("/:user_id/accepted_requested", handlers.GetAcceptedRequested(db))
	}

	// 数据导出
	exportRoute := api.Group("/export")
	{
		exportRoute.GET("/users", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.ExportUsers(db))
	}

	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("服务启动失败")
	}
}
