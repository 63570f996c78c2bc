package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/service"
)

const testSecret = "handler-test-secret"

func setupTestAPI(t *testing.T) (*API, *gorm.DB) {
	t.Helper()
	return setupTestAPIWithStore(t, nil, 0)
}

func setupTestAPIWithStore(t *testing.T, store *memoryStore, maxBytes int64) (*API, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%s-%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	services := Services{Auth: service.NewAuthService(gdb, testSecret, time.Hour)}
	if store != nil {
		services.Media = service.NewMediaService(gdb, store, maxBytes)
	}
	return NewAPI(gdb, services), gdb
}

// newTestContext 构造一个带 JSON 请求体的 gin 上下文。
func newTestContext(method, target string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// asStaff 模拟已通过 Authenticate 的后台用户。
func asStaff(c *gin.Context, userID uint) {
	c.Set(claimsContextKey, &service.Claims{Name: "editor", Role: db.RoleStaff, RegisteredClaims: registeredSubject(userID)})
}

type testEnvelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Error      string              `json:"error"`
	Pagination *service.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, dst any) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("failed to decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func seedPost(t *testing.T, api *API, input service.PostInput) *db.Post {
	t.Helper()
	post, err := api.posts.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func registeredSubject(userID uint) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{Subject: strconv.FormatUint(uint64(userID), 10)}
}
