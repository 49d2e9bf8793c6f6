package users

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"contractai-backend/internal/shared/auth"
	"contractai-backend/internal/shared/server/middleware"
	"contractai-backend/internal/shared/telemetry"
)

func newHandlerRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokens("test-secret", "HS256", 30)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	repo := NewMemoryRepo()
	handler := NewHandler(repo, tokens)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterPublicRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Auth(tokens, nil))
	handler.RegisterRoutes(authed)
	return router, repo
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegisterLoginAndMe(t *testing.T) {
	router, _ := newHandlerRouter(t)

	resp := postJSON(t, router, "/api/v1/auth/register", map[string]any{
		"email":     "ada@example.com",
		"password":  "correct-horse",
		"full_name": "Ada Lovelace",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("hashed_password")) {
		t.Fatalf("response leaks password hash: %s", resp.Body.String())
	}

	resp = postJSON(t, router, "/api/v1/auth/login", map[string]any{
		"email":    "ada@example.com",
		"password": "correct-horse",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var loginBody struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &loginBody); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	if loginBody.AccessToken == "" || loginBody.TokenType != "bearer" {
		t.Fatalf("login body = %+v", loginBody)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginBody.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me User
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me body: %v", err)
	}
	if me.Email != "ada@example.com" || me.FullName != "Ada Lovelace" {
		t.Fatalf("me = %+v", me)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	router, _ := newHandlerRouter(t)

	resp := postJSON(t, router, "/api/v1/auth/register", map[string]any{
		"email":    "bob@example.com",
		"password": "correct-horse",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.Code)
	}

	resp = postJSON(t, router, "/api/v1/auth/login", map[string]any{
		"email":    "bob@example.com",
		"password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "AuthenticationError" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	router, _ := newHandlerRouter(t)

	payload := map[string]any{"email": "dup@example.com", "password": "correct-horse"}
	if resp := postJSON(t, router, "/api/v1/auth/register", payload); resp.Code != http.StatusCreated {
		t.Fatalf("first register: expected 201, got %d", resp.Code)
	}
	resp := postJSON(t, router, "/api/v1/auth/register", payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", resp.Code)
	}
}
