package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskhub/internal/services"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxClaims = "claims"
)

type TokenParser interface {
	ParseAccessToken(token string) (*services.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware accepts a valid, unrevoked bearer access token and puts the
// caller's id, role and claims into the gin context. revoked may be nil.
func AuthMiddleware(tokens TokenParser, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1) пропускаем preflight
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		// 2) читаем Authorization
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		// 3) парсим и валидируем токен (подпись, срок с leeway)
		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 4) отозван ли токен через logout
		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.Printf("[auth][revocation][err] jti=%s: %v", claims.ID, err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Token check unavailable"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
				return
			}
		}

		// 5) прокидываем user/role в контекст
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}
