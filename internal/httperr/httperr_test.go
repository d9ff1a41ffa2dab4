package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
	m.Run()
}

func TestBusinessErrorSentinel(t *testing.T) {
	errTaken := ErrBusiness("email_taken")
	wrapped := fmt.Errorf("create user: %w", errTaken)

	if !errors.Is(wrapped, errTaken) {
		t.Errorf("errors.Is() = false, want true")
	}
	if !IsBusiness(wrapped, "email_taken") {
		t.Errorf("IsBusiness() = false, want true")
	}
	if IsBusiness(wrapped, "other") {
		t.Errorf("IsBusiness() matched wrong code")
	}
	if got := BusinessCode(wrapped); got != "email_taken" {
		t.Errorf("BusinessCode() = %q", got)
	}
	if got := BusinessCode(errors.New("plain")); got != "" {
		t.Errorf("BusinessCode(plain) = %q, want empty", got)
	}
}

type bindTarget struct {
	Title   string `json:"title" binding:"required,max=5"`
	Minutes *int   `json:"time_minutes" binding:"required"`
}

func bind(t *testing.T, body string) (*httptest.ResponseRecorder, HTTPError) {
	t.Helper()
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var target bindTarget
	if err := c.ShouldBindJSON(&target); err != nil {
		Validation(c, err)
	} else {
		t.Fatalf("expected bind error for %s", body)
	}

	var got HTTPError
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rr, got
}

func TestValidationReportsJSONFieldNames(t *testing.T) {
	rr, got := bind(t, `{"title": "far too long"}`)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if got.Details["title"] != "max" {
		t.Errorf("details[title] = %q, want max", got.Details["title"])
	}
	if got.Details["time_minutes"] != "required" {
		t.Errorf("details[time_minutes] = %q, want required", got.Details["time_minutes"])
	}
}

func TestValidationTypeAndSyntaxErrors(t *testing.T) {
	_, got := bind(t, `{"title": "ok", "time_minutes": "ten"}`)
	if got.Details["time_minutes"] != "type" {
		t.Errorf("details = %v, want time_minutes type error", got.Details)
	}

	_, got = bind(t, `{"title":`)
	if got.Code != "invalid_request" || got.Details != nil {
		t.Errorf("syntax error body = %+v", got)
	}
}
