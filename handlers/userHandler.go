package handlers

import (
	"net/http"

	"liveserver/auth"
	"liveserver/middlewares"
	"liveserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserCreate は新規ユーザーを作成してトークンを返す
func UserCreate(c *gin.Context, provider *auth.Provider, logger *zap.Logger) {
	var request models.UserCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Warn("User create request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := provider.CreateUser(c.Request.Context(), request.UserName, request.LeaderCardID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, models.UserCreateResponse{UserToken: token})
}

// UserMe はトークンから自身の情報を返す
func UserMe(c *gin.Context) {
	user, ok := middlewares.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
		return
	}
	c.JSON(http.StatusOK, user.Safe())
}

// UserUpdate は名前とリーダーカードを更新する
func UserUpdate(c *gin.Context, provider *auth.Provider, logger *zap.Logger) {
	var request models.UserCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Warn("User update request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := middlewares.GetToken(c)
	if err := provider.UpdateUser(c.Request.Context(), token, request.UserName, request.LeaderCardID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
