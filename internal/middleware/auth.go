package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// OwnerTokenKey context 裡存放持有者識別的 key
	OwnerTokenKey = "owner_token"
	// RoleKey context 裡存放角色的 key
	RoleKey = "role"

	// SessionHeader 匿名客人帶的 session 標頭
	SessionHeader = "X-Session-ID"
)

// Identity 解析請求的持有者身份。hold 與票券都綁在這個識別上：
//   - 有 Bearer token：驗 JWT，取 sub 當識別、role 當角色
//   - 沒有：匿名客人，用 X-Session-ID 當識別；連這個都沒有就發一個
//
// 匿名識別只存在於回應標頭，客人要自己帶著它來操作自己的 hold。
func Identity(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			raw := strings.TrimPrefix(auth, "Bearer ")

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid token",
				})
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid token",
				})
				return
			}

			sub, _ := claims["sub"].(string)
			if sub == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid token",
				})
				return
			}

			c.Set(OwnerTokenKey, sub)
			if role, ok := claims["role"].(string); ok {
				c.Set(RoleKey, role)
			}

			c.Next()
			return
		}

		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		c.Set(OwnerTokenKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.Next()
	}
}

// RequireRole 限定路由只給特定角色使用，假設 Identity 已先跑過
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, ok := c.Get(RoleKey)
		roleStr, isStr := role.(string)
		if !ok || !isStr || !allowed[roleStr] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}
		c.Next()
	}
}

// OwnerToken 取出目前請求的持有者識別
func OwnerToken(c *gin.Context) string {
	token, _ := c.Get(OwnerTokenKey)
	s, _ := token.(string)
	return s
}
