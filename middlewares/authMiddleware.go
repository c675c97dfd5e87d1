package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"liveserver/auth"
	"liveserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	userKey  = "user"
	tokenKey = "token"
)

// UserResolver はトークンからユーザーを解決する（auth.Provider が実装）
type UserResolver interface {
	Resolve(ctx context.Context, token string) (models.User, error)
}

// BearerToken は Authorization ヘッダーから Bearer トークンを取り出す
func BearerToken(c *gin.Context) string {
	tokenString := c.GetHeader("Authorization")
	if !strings.HasPrefix(tokenString, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
}

// AuthMiddleware はトークンを検証し、ユーザーをコンテキストにセットする
func AuthMiddleware(resolver UserResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			logger.Warn("Token string is empty", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrInvalidToken):
			logger.Warn("認証失敗", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
			return
		case errors.Is(err, auth.ErrUserNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		default:
			logger.Error("Failed to resolve user", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// GetUser は AuthMiddleware がセットしたユーザーを返す
func GetUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// GetToken は AuthMiddleware が検証済みのトークンを返す
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
