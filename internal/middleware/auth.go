package middleware

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"backend/internal/model"
	"backend/pkg/response"
)

// Context keys set by the auth middleware.
const (
	CtxUserName = "userName"
	CtxUserRole = "userRole"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only
	}
	return []byte(secret)
}

// IssueToken signs a session token carrying the simulated identity. The role
// claim is what the engine later receives as the acting role.
func IssueToken(user string, role model.Role, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user,
		"role": role.String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func parseClaims(c *gin.Context) (string, model.Role, bool) {
	tokenString, ok := extractToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing or malformed. Expected 'Bearer <token>'"))
		return "", "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return "", "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return "", "", false
	}

	user, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if !role.IsValid() {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return "", "", false
	}

	return user, role, true
}

// RequireSession validates the session token and exposes the acting identity
// on the gin context. Authorization decisions stay with the engine — this
// middleware only establishes who is calling.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role, ok := parseClaims(c)
		if !ok {
			return
		}
		c.Set(CtxUserName, user)
		c.Set(CtxUserRole, role)
		c.Next()
	}
}

// RequireRole validates the session token and additionally checks that the
// simulated role is in the allowed list. Used for the admin-gated workflow
// editor and the audit viewer.
func RequireRole(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role, ok := parseClaims(c)
		if !ok {
			return
		}

		allowed := false
		for _, r := range allowedRoles {
			if role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(CtxUserName, user)
		c.Set(CtxUserRole, role)
		c.Next()
	}
}

// ActorFrom rebuilds the acting identity stored by the middleware.
func ActorFrom(c *gin.Context) (string, model.Role) {
	user, _ := c.Get(CtxUserName)
	role, _ := c.Get(CtxUserRole)
	name, _ := user.(string)
	r, _ := role.(model.Role)
	return name, r
}
