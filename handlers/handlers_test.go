package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"alumni-connect/auth"
	"alumni-connect/handlers"
	"alumni-connect/models"
	"alumni-connect/smtp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMailer 记录发送内容，不真正发邮件
type fakeMailer struct {
	requests []smtp.ConnectionRequestMail
	accepted []smtp.ConnectionAcceptedMail
}

func (f *fakeMailer) SendConnectionRequest(m smtp.ConnectionRequestMail) error {
	f.requests = append(f.requests, m)
	return nil
}

func (f *fakeMailer) SendConnectionAccepted(m smtp.ConnectionAcceptedMail) error {
	f.accepted = append(f.accepted, m)
	return nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	// 每个测试独立的共享内存库，避免连接池拿到不同的:memory:实例
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Email{},
		&models.Company{},
		&models.Employment{},
		&models.Interview{},
		&models.Request{},
		&models.CompletedRequest{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func setupRouter(db *gorm.DB, mailer smtp.Mailer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	api := r.Group("/api/v1")

	authRoute := api.Group("/auth")
	authRoute.POST("/register", handlers.Register(db))
	authRoute.POST("/login", handlers.Login(db))
	authRoute.GET("/me", handlers.AuthMiddleware(), handlers.GetCurrentUser(db))
	authRoute.POST("/change-password", handlers.AuthMiddleware(), handlers.ChangePassword(db))

	usersRoute := api.Group("/users")
	usersRoute.GET("", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.GetUsers(db))
	usersRoute.POST("", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.CreateUser(db))
	usersRoute.GET("/:id", handlers.AuthMiddleware(), handlers.GetUserDetail(db))
	usersRoute.PATCH("/me", handlers.AuthMiddleware(), handlers.UpdateProfile(db))

	companiesRoute := api.Group("/companies", handlers.AuthMiddleware())
	companiesRoute.GET("", handlers.GetCompanies(db))
	companiesRoute.POST("", handlers.CreateCompany(db))
	companiesRoute.GET("/employee_counts", handlers.GetEmployeeCounts(db))
	companiesRoute.GET("/current_employees/:name", handlers.GetCurrentEmployees(db))
	companiesRoute.GET("/:name", handlers.GetCompany(db))

	employmentRoute := api.Group("/employment", handlers.AuthMiddleware())
	employmentRoute.GET("", handlers.GetEmployments(db))
	employmentRoute.POST("", handlers.AddEmployment(db))
	employmentRoute.DELETE("/:id", handlers.DeleteEmployment(db))

	interviewsRoute := api.Group("/interviews", handlers.AuthMiddleware())
	interviewsRoute.GET("", handlers.GetInterviews(db))
	interviewsRoute.POST("", handlers.CreateInterview(db))
	interviewsRoute.POST("/bulk", handlers.CreateInterviewsBulk(db))

	emailsRoute := api.Group("/emails", handlers.AuthMiddleware())
	emailsRoute.POST("/me", handlers.AddEmail(db))
	emailsRoute.PATCH("/me/preferred", handlers.SetPreferredEmail(db))
	emailsRoute.GET("/:user_id", handlers.GetUserEmails(db))

	connectionsRoute := api.Group("/connections", handlers.AuthMiddleware())
	connectionsRoute.POST("", handlers.CreateConnectionRequest(db, mailer, "http://localhost:5173"))
	connectionsRoute.DELETE("/:id", handlers.WithdrawConnectionRequest(db))
	connectionsRoute.POST("/accept/:id", handlers.AcceptConnectionRequest(db, mailer))
	connectionsRoute.POST("/ignore/:id", handlers.IgnoreConnectionRequest(db))
	connectionsRoute.GET("/me/pending", handlers.GetPendingRequests(db))
	connectionsRoute.GET("/:user_id/accepted_requests", handlers.GetAcceptedRequests(db))
	connectionsRoute.GET("/:user_id/accepted_requested", handlers.GetAcceptedRequested(db))

	exportRoute := api.Group("/export")
	exportRoute.GET("/users", handlers.AuthMiddleware(), handlers.RequireAdmin(), handlers.ExportUsers(db))

	return r
}

// createUser 直接插入用户并返回可用的Bearer Token
func createUser(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	hashed, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	name := email
	user := models.User{
		UUID:     uuid.New(),
		Email:    email,
		FullName: &name,
		PassWord: hashed,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := auth.GenerateToken(user.UUID.String(), user.Email, user.IsAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	return user, token
}

// createAdmin 创建管理员用户并返回对应的Token
func createAdmin(t *testing.T, db *gorm.DB, email string) (models.User, string) {
	t.Helper()

	user, _ := createUser(t, db, email)
	if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	user.IsAdmin = true

	token, err := auth.GenerateToken(user.UUID.String(), user.Email, true)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	return user, token
}

// addEmail 直接插入联系邮箱
func addEmail(t *testing.T, db *gorm.DB, user models.User, address string, preferred bool) {
	t.Helper()

	email := models.Email{
		Email:     address,
		UserUUID:  user.UUID,
		Preferred: preferred,
	}
	if err := db.Create(&email).Error; err != nil {
		t.Fatalf("create email: %v", err)
	}
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
}

func setTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("secret-key", "test-secret")
}
