package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/panlogistics/blog/internal/db"
	"github.com/panlogistics/blog/internal/service"
)

const claimsContextKey = "__auth_claims"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验后台账号密码并签发 Bearer 令牌。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := a.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondFailure(c, err, "login failed")
		return
	}
	respondOK(c, result)
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticate rejects requests without a valid bearer token.
func (a *API) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		claims, err := a.auth.Parse(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, service.ErrInvalidToken.Error())
			return
		}
		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireStaff 要求已认证用户具有后台角色，需放在 Authenticate 之后。
func (a *API) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !db.IsStaff(claims.Role) {
			respondError(c, http.StatusForbidden, "staff role required")
			return
		}
		c.Next()
	}
}

// OptionalAuth records claims when a valid token is present and never rejects.
func (a *API) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := a.auth.Parse(token); err == nil {
				c.Set(claimsContextKey, claims)
			}
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *service.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, _ := value.(*service.Claims)
	return claims
}

// currentUserID returns the authenticated user id, or nil for anonymous requests.
func currentUserID(c *gin.Context) *uint {
	claims := currentClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &id
}

// isStaffRequest reports whether the request carries a staff token.
func isStaffRequest(c *gin.Context) bool {
	claims := currentClaims(c)
	return claims != nil && db.IsStaff(claims.Role)
}
