package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/sohailKhanIITD/recipe-app-api/internal/models"
)

const (
	createUserURL = "/api/user/create"
	tokenURL      = "/api/user/token"
	meURL         = "/api/user/me"
	logoutURL     = "/api/user/logout"
)

func TestCreateUserSuccess(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, createUserURL, "", map[string]string{
		"email":    "test@EXAMPLE.com",
		"password": "testpass123",
		"name":     "Test Name",
	})
	expectStatus(t, w, http.StatusCreated)

	body := decode[map[string]any](t, w)
	if _, ok := body["password"]; ok {
		t.Error("response leaks password")
	}
	if body["email"] != "test@example.com" {
		t.Errorf("email = %v, want normalized test@example.com", body["email"])
	}

	var u models.User
	if err := s.db.Where("email = ?", "test@example.com").First(&u).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !u.CheckPassword("testpass123") {
		t.Error("stored password does not verify")
	}
	if !u.IsActive || u.IsStaff || u.IsSuperuser {
		t.Errorf("flags = active:%v staff:%v super:%v", u.IsActive, u.IsStaff, u.IsSuperuser)
	}
}

func TestCreateUserEmailExists(t *testing.T) {
	s := setupTestServer(t)
	s.createUser(t, "test@example.com", "testpass123")

	w := s.do(t, http.MethodPost, createUserURL, "", map[string]string{
		"email":    "test@example.com",
		"password": "testpass123",
		"name":     "Test Name",
	})
	expectStatus(t, w, http.StatusBadRequest)

	if got := decode[errorBody](t, w).Code; got != "email_taken" {
		t.Errorf("error_code = %q, want email_taken", got)
	}
}

func TestCreateUserPasswordTooShort(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, createUserURL, "", map[string]string{
		"email":    "test@example.com",
		"password": "pw",
		"name":     "Test Name",
	})
	expectStatus(t, w, http.StatusBadRequest)

	if got := decode[errorBody](t, w).Details["password"]; got != "min" {
		t.Errorf("details.password = %q, want min", got)
	}

	err := s.db.Where("email = ?", "test@example.com").First(&models.User{}).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("user lookup error = %v, want record not found", err)
	}
}

func TestCreateToken(t *testing.T) {
	s := setupTestServer(t)
	s.createUser(t, "test@example.com", "test-user-password123")

	w := s.do(t, http.MethodPost, tokenURL, "", map[string]string{
		"email":    "test@example.com",
		"password": "test-user-password123",
	})
	expectStatus(t, w, http.StatusOK)

	body := decode[map[string]any](t, w)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("token missing in %v", body)
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.ID == "" {
		t.Error("token has no jti")
	}
}

func TestCreateTokenRejected(t *testing.T) {
	s := setupTestServer(t)
	s.createUser(t, "test@example.com", "goodpass")

	tests := []struct {
		name     string
		body     map[string]string
		wantCode string
	}{
		{"bad password", map[string]string{"email": "test@example.com", "password": "badpass"}, "invalid_credentials"},
		{"unknown email", map[string]string{"email": "nobody@example.com", "password": "goodpass"}, "invalid_credentials"},
		{"blank password", map[string]string{"email": "test@example.com", "password": ""}, "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, tokenURL, "", tt.body)
			expectStatus(t, w, http.StatusBadRequest)

			body := decode[map[string]any](t, w)
			if _, ok := body["token"]; ok {
				t.Error("token issued for rejected credentials")
			}
			if body["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %s", body["error_code"], tt.wantCode)
			}
		})
	}
}

func TestRetrieveUserUnauthorized(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, meURL, "", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestRetrieveProfile(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")

	w := s.do(t, http.MethodGet, meURL, s.tokenFor(t, u), nil)
	expectStatus(t, w, http.StatusOK)

	body := decode[map[string]string](t, w)
	if body["email"] != u.Email || body["name"] != u.Name {
		t.Errorf("profile = %v", body)
	}
}

func TestPostMeNotAllowed(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")

	w := s.do(t, http.MethodPost, meURL, s.tokenFor(t, u), map[string]string{})
	expectStatus(t, w, http.StatusMethodNotAllowed)
}

func TestUpdateUserProfile(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")

	w := s.do(t, http.MethodPatch, meURL, s.tokenFor(t, u), map[string]string{
		"name":     "Updated name",
		"password": "newpassword123",
	})
	expectStatus(t, w, http.StatusOK)

	var got models.User
	if err := s.db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if got.Name != "Updated name" {
		t.Errorf("name = %q", got.Name)
	}
	if !got.CheckPassword("newpassword123") {
		t.Error("new password does not verify")
	}
}

func TestAuthorizationSchemes(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")
	token := s.tokenFor(t, u)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"bearer", "Bearer " + token, http.StatusOK},
		{"token", "Token " + token, http.StatusOK},
		{"no scheme", token, http.StatusUnauthorized},
		{"basic", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, meURL, tt.header)
			w := serve(s, req)
			expectStatus(t, w, tt.want)
		})
	}
}

func TestInactiveUserRejected(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")
	token := s.tokenFor(t, u)

	if err := s.db.Model(u).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w := s.do(t, http.MethodGet, meURL, token, nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t)
	u := s.createUser(t, "test@example.com", "testpass123")
	token := s.tokenFor(t, u)

	w := s.do(t, http.MethodPost, logoutURL, token, nil)
	expectStatus(t, w, http.StatusNoContent)

	w = s.do(t, http.MethodGet, meURL, token, nil)
	expectStatus(t, w, http.StatusUnauthorized)
	if got := decode[errorBody](t, w).Code; got != "token_revoked" {
		t.Errorf("error_code = %q, want token_revoked", got)
	}

	w = s.do(t, http.MethodGet, meURL, s.tokenFor(t, u), nil)
	expectStatus(t, w, http.StatusOK)
}

func TestAuditLogsListUserEvents(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, createUserURL, "", map[string]string{
		"email":    "test@example.com",
		"password": "testpass123",
	})
	expectStatus(t, w, http.StatusCreated)

	var u models.User
	if err := s.db.Where("email = ?", "test@example.com").First(&u).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	token := s.tokenFor(t, &u)

	w = s.do(t, http.MethodPatch, meURL, token, map[string]string{"name": "Renamed"})
	expectStatus(t, w, http.StatusOK)

	s.audit.Close()

	w = s.do(t, http.MethodGet, meURL+"/audit-logs?limit=1", token, nil)
	expectStatus(t, w, http.StatusOK)

	page := decode[struct {
		Page  int               `json:"page"`
		Limit int               `json:"limit"`
		Total int64             `json:"total"`
		Data  []models.AuditLog `json:"data"`
	}](t, w)
	if page.Total != 2 || page.Limit != 1 || len(page.Data) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if page.Data[0].Action != "user_updated" {
		t.Errorf("newest action = %q, want user_updated", page.Data[0].Action)
	}
}
