package handlers

import (
	"errors"
	"net/http"

	"liveserver/auth"
	"liveserver/rooms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError はエラーの種類に応じたステータスコードで応答する。
// 不整合やストアの障害はクライアントに詳細を返さずログに残す
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, rooms.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, rooms.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, rooms.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
	default:
		logger.Error("Internal error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
