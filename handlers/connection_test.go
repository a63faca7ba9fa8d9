package handlers_test

import (
	"net/http"
	"testing"

	"alumni-connect/models"

	"github.com/google/uuid"
)

func TestCreateConnectionRequest(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	mailer := &fakeMailer{}
	r := setupRouter(db, mailer)

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, bobToken := createUser(t, db, "bob@example.com")
	addEmail(t, db, bob, "bob-preferred@example.com", true)

	tests := []struct {
		name       string
		token      string
		body       map[string]any
		wantStatus int
	}{
		{
			name:       "SelfRequest",
			token:      aliceToken,
			body:       map[string]any{"requesterId": alice.UUID.String(), "requestedId": alice.UUID.String()},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "OnBehalfOfOther",
			token:      bobToken,
			body:       map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "UnknownTarget",
			token:      aliceToken,
			body:       map[string]any{"requesterId": alice.UUID.String(), "requestedId": "a2a8f60e-0000-0000-0000-000000000000"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Success",
			token:      aliceToken,
			body:       map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String(), "message": "你好"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "DuplicateSameDirection",
			token:      aliceToken,
			body:       map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ReverseAlreadyPending",
			token:      bobToken,
			body:       map[string]any{"requesterId": bob.UUID.String(), "requestedId": alice.UUID.String()},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/api/v1/connections", tt.token, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	// 成功那一次应该只产生一条请求和一封通知
	var count int64
	db.Model(&models.Request{}).Count(&count)
	if count != 1 {
		t.Fatalf("request count = %d, want 1", count)
	}
	if len(mailer.requests) != 1 {
		t.Fatalf("mail attempts = %d, want 1", len(mailer.requests))
	}
	if mailer.requests[0].To != "bob-preferred@example.com" {
		t.Fatalf("mail to = %s", mailer.requests[0].To)
	}
	if mailer.requests[0].RequestLink == "" {
		t.Fatal("mail request link empty")
	}
}

func TestCreateConnectionRequestNoPreferredEmail(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	mailer := &fakeMailer{}
	r := setupRouter(db, mailer)

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, _ := createUser(t, db, "bob@example.com")
	// bob有邮箱但没有preferred
	addEmail(t, db, bob, "bob-extra@example.com", false)

	body := map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()}
	w := doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	if len(mailer.requests) != 0 {
		t.Fatalf("mail attempts = %d, want 0", len(mailer.requests))
	}
}

func TestCreateConnectionRequestMailerDisabled(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	// 通知关闭时传nil
	r := setupRouter(db, nil)

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, _ := createUser(t, db, "bob@example.com")
	addEmail(t, db, bob, "bob-preferred@example.com", true)

	body := map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()}
	w := doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&models.Request{}).Count(&count)
	if count != 1 {
		t.Fatalf("request count = %d, want 1", count)
	}
}

func TestAcceptConnectionRequest(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	mailer := &fakeMailer{}
	r := setupRouter(db, mailer)

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, bobToken := createUser(t, db, "bob@example.com")
	addEmail(t, db, alice, "alice-preferred@example.com", true)
	addEmail(t, db, bob, "bob-preferred@example.com", true)

	// alice -> bob
	body := map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()}
	w := doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d, body %s", w.Code, w.Body.String())
	}

	var request models.Request
	if err := db.First(&request).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}

	// 发起者自己不能接受
	w = doRequest(t, r, http.MethodPost, "/api/v1/connections/accept/"+request.UUID.String(), aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("accept by requester: status = %d", w.Code)
	}

	// 被请求方接受
	w = doRequest(t, r, http.MethodPost, "/api/v1/connections/accept/"+request.UUID.String(), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("accept: status = %d, body %s", w.Code, w.Body.String())
	}

	// 请求被删除，台账恰好一条且方向一致
	var requestCount, completedCount int64
	db.Model(&models.Request{}).Count(&requestCount)
	db.Model(&models.CompletedRequest{}).Count(&completedCount)
	if requestCount != 0 {
		t.Fatalf("request count = %d, want 0", requestCount)
	}
	if completedCount != 1 {
		t.Fatalf("completed count = %d, want 1", completedCount)
	}

	var completed models.CompletedRequest
	db.First(&completed)
	if completed.RequesterUUID != alice.UUID || completed.RequestedUUID != bob.UUID {
		t.Fatalf("completed pair = (%s, %s)", completed.RequesterUUID, completed.RequestedUUID)
	}

	// 恰好一封接受通知，发给发起者，带接受者联系方式
	if len(mailer.accepted) != 1 {
		t.Fatalf("accepted mail attempts = %d, want 1", len(mailer.accepted))
	}
	if mailer.accepted[0].To != "alice-preferred@example.com" {
		t.Fatalf("accepted mail to = %s", mailer.accepted[0].To)
	}
	if mailer.accepted[0].ContactEmail != "bob-preferred@example.com" {
		t.Fatalf("contact email = %s", mailer.accepted[0].ContactEmail)
	}

	// 重复接受：请求已不存在
	w = doRequest(t, r, http.MethodPost, "/api/v1/connections/accept/"+request.UUID.String(), bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("double accept: status = %d", w.Code)
	}
}

func TestIgnoreConnectionRequest(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	mailer := &fakeMailer{}
	r := setupRouter(db, mailer)

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, bobToken := createUser(t, db, "bob@example.com")
	addEmail(t, db, alice, "alice-preferred@example.com", true)

	body := map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()}
	w := doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d", w.Code)
	}

	var request models.Request
	db.First(&request)

	// 发起者不能忽略
	w = doRequest(t, r, http.MethodPost, "/api/v1/connections/ignore/"+request.UUID.String(), aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("ignore by requester: status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/api/v1/connections/ignore/"+request.UUID.String(), bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ignore: status = %d, body %s", w.Code, w.Body.String())
	}

	// 不入账、不通知
	var requestCount, completedCount int64
	db.Model(&models.Request{}).Count(&requestCount)
	db.Model(&models.CompletedRequest{}).Count(&completedCount)
	if requestCount != 0 || completedCount != 0 {
		t.Fatalf("counts = (%d, %d), want (0, 0)", requestCount, completedCount)
	}
	if len(mailer.accepted) != 0 {
		t.Fatalf("accepted mail attempts = %d, want 0", len(mailer.accepted))
	}

	// 忽略之后可以重新发起
	w = doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("re-create after ignore: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestWithdrawConnectionRequest(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, bobToken := createUser(t, db, "bob@example.com")

	body := map[string]any{"requesterId": alice.UUID.String(), "requestedId": bob.UUID.String()}
	w := doRequest(t, r, http.MethodPost, "/api/v1/connections", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d", w.Code)
	}

	var request models.Request
	db.First(&request)

	// 被请求方不能撤回
	w = doRequest(t, r, http.MethodDelete, "/api/v1/connections/"+request.UUID.String(), bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("withdraw by requested: status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodDelete, "/api/v1/connections/"+request.UUID.String(), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw: status = %d", w.Code)
	}

	// 不存在的请求
	w = doRequest(t, r, http.MethodDelete, "/api/v1/connections/"+request.UUID.String(), aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("withdraw missing: status = %d", w.Code)
	}
}

func TestAcceptedConnectionQueries(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	alice, aliceToken := createUser(t, db, "alice@example.com")
	bob, bobToken := createUser(t, db, "bob@example.com")

	// 直接造一条已完成连接 alice -> bob
	completed := models.CompletedRequest{
		UUID:          uuid.New(),
		RequesterUUID: alice.UUID,
		RequestedUUID: bob.UUID,
	}
	if err := db.Create(&completed).Error; err != nil {
		t.Fatalf("create completed: %v", err)
	}

	// 只能查自己的连接
	w := doRequest(t, r, http.MethodGet, "/api/v1/connections/"+bob.UUID.String()+"/accepted_requests", aliceToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign query: status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/v1/connections/"+alice.UUID.String()+"/accepted_requests", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("own requests: status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/v1/connections/"+bob.UUID.String()+"/accepted_requested", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("own requested: status = %d", w.Code)
	}
}
