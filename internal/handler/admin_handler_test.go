package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/panlogistics/blog/internal/db"
)

func newAuthEngine(api *API) *gin.Engine {
	r := gin.New()
	r.GET("/staff", api.Authenticate(), api.RequireStaff(), func(c *gin.Context) {
		id := currentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": *id})
	})
	r.GET("/optional", api.OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff": isStaffRequest(c)})
	})
	return r
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAndRequireStaff(t *testing.T) {
	api, _ := setupTestAPI(t)
	r := newAuthEngine(api)

	staffToken, _, err := api.auth.Issue(db.User{Model: gorm.Model{ID: 9}, Username: "editor", Role: db.RoleStaff})
	require.NoError(t, err)
	viewerToken, _, err := api.auth.Issue(db.User{Model: gorm.Model{ID: 10}, Username: "viewer", Role: "viewer"})
	require.NoError(t, err)

	w := serve(r, "/staff", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "/staff", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = serve(r, "/staff", viewerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, "/staff", staffToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":9}`, w.Body.String())
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	api, _ := setupTestAPI(t)
	r := newAuthEngine(api)

	adminToken, _, err := api.auth.Issue(db.User{Model: gorm.Model{ID: 1}, Username: "admin", Role: db.RoleAdmin})
	require.NoError(t, err)

	assert.JSONEq(t, `{"staff":false}`, serve(r, "/optional", "").Body.String())
	assert.JSONEq(t, `{"staff":false}`, serve(r, "/optional", "garbage").Body.String())
	assert.JSONEq(t, `{"staff":true}`, serve(r, "/optional", adminToken).Body.String())
}

func TestLogin(t *testing.T) {
	api, gdb := setupTestAPI(t)
	require.NoError(t, db.EnsureUser(gdb, "admin", "harbour"))

	c, w := newTestContext(http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "harbour"})
	api.Login(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Token string  `json:"token"`
		User  db.User `json:"user"`
	}
	decodeEnvelope(t, w, &result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "admin", result.User.Username)
	assert.NotContains(t, w.Body.String(), "harbour")

	claims, err := api.auth.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, db.RoleAdmin, claims.Role)

	c, w = newTestContext(http.MethodPost, "/api/auth/login", map[string]any{"username": "admin", "password": "wrong"})
	api.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newTestContext(http.MethodPost, "/api/auth/login", map[string]any{"username": "admin"})
	api.Login(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBearerTokenParsing(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer  abc ":   "abc",
		"Basic dXNlcjpw": "",
		"Bearer":         "",
	}
	for header, want := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			c.Request.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(c), "header %q", header)
	}
}
