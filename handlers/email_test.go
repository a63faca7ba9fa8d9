package handlers_test

import (
	"net/http"
	"testing"

	"alumni-connect/models"
)

func TestAddEmailGlobalUnique(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	_, aliceToken := createUser(t, db, "alice@example.com")
	_, bobToken := createUser(t, db, "bob@example.com")

	body := map[string]any{"email": "shared@example.com", "preferred": true}
	w := doRequest(t, r, http.MethodPost, "/api/v1/emails/me", aliceToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("first add: status = %d, body %s", w.Code, w.Body.String())
	}

	// 同一邮箱换个用户也不行：全局唯一
	w = doRequest(t, r, http.MethodPost, "/api/v1/emails/me", bobToken, body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate add: status = %d", w.Code)
	}
}

func TestPreferredEmailSwapOnAdd(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	alice, aliceToken := createUser(t, db, "alice@example.com")

	w := doRequest(t, r, http.MethodPost, "/api/v1/emails/me", aliceToken,
		map[string]any{"email": "first@example.com", "preferred": true})
	if w.Code != http.StatusOK {
		t.Fatalf("add first: status = %d", w.Code)
	}

	// 第二个preferred邮箱应把第一个的标记翻掉
	w = doRequest(t, r, http.MethodPost, "/api/v1/emails/me", aliceToken,
		map[string]any{"email": "second@example.com", "preferred": true})
	if w.Code != http.StatusOK {
		t.Fatalf("add second: status = %d", w.Code)
	}

	var preferredCount int64
	db.Model(&models.Email{}).Where("user_uuid = ? AND preferred = ?", alice.UUID, true).Count(&preferredCount)
	if preferredCount != 1 {
		t.Fatalf("preferred count = %d, want 1", preferredCount)
	}

	var preferred models.Email
	db.Where("user_uuid = ? AND preferred = ?", alice.UUID, true).First(&preferred)
	if preferred.Email != "second@example.com" {
		t.Fatalf("preferred = %s, want second@example.com", preferred.Email)
	}
}

func TestSetPreferredEmail(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	alice, aliceToken := createUser(t, db, "alice@example.com")
	addEmail(t, db, alice, "first@example.com", true)
	addEmail(t, db, alice, "second@example.com", false)

	// 切换到second
	w := doRequest(t, r, http.MethodPatch, "/api/v1/emails/me/preferred", aliceToken,
		map[string]any{"email": "second@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("swap: status = %d, body %s", w.Code, w.Body.String())
	}

	var preferredCount int64
	db.Model(&models.Email{}).Where("user_uuid = ? AND preferred = ?", alice.UUID, true).Count(&preferredCount)
	if preferredCount != 1 {
		t.Fatalf("preferred count = %d, want 1", preferredCount)
	}

	var preferred models.Email
	db.Where("user_uuid = ? AND preferred = ?", alice.UUID, true).First(&preferred)
	if preferred.Email != "second@example.com" {
		t.Fatalf("preferred = %s, want second@example.com", preferred.Email)
	}

	// 重复设置同一邮箱：幂等
	w = doRequest(t, r, http.MethodPatch, "/api/v1/emails/me/preferred", aliceToken,
		map[string]any{"email": "second@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("idempotent swap: status = %d", w.Code)
	}
	db.Model(&models.Email{}).Where("user_uuid = ? AND preferred = ?", alice.UUID, true).Count(&preferredCount)
	if preferredCount != 1 {
		t.Fatalf("preferred count after idempotent swap = %d, want 1", preferredCount)
	}

	// 不存在的邮箱
	w = doRequest(t, r, http.MethodPatch, "/api/v1/emails/me/preferred", aliceToken,
		map[string]any{"email": "missing@example.com"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing email: status = %d", w.Code)
	}

	// 别人的邮箱不能设为自己的preferred
	bob, _ := createUser(t, db, "bob@example.com")
	addEmail(t, db, bob, "bob-mail@example.com", false)
	w = doRequest(t, r, http.MethodPatch, "/api/v1/emails/me/preferred", aliceToken,
		map[string]any{"email": "bob-mail@example.com"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign email: status = %d", w.Code)
	}
}

func TestGetUserEmails(t *testing.T) {
	setTestSecret(t)
	db := setupDB(t)
	r := setupRouter(db, &fakeMailer{})

	alice, aliceToken := createUser(t, db, "alice@example.com")
	addEmail(t, db, alice, "first@example.com", true)
	addEmail(t, db, alice, "second@example.com", false)

	w := doRequest(t, r, http.MethodGet, "/api/v1/emails/"+alice.UUID.String(), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		OK    bool           `json:"ok"`
		Data  []models.Email `json:"data"`
		Count int64          `json:"count"`
	}
	decodeBody(t, w, &resp)
	if resp.Count != 2 || len(resp.Data) != 2 {
		t.Fatalf("count = %d, len = %d, want 2", resp.Count, len(resp.Data))
	}
}
