package handlers

import (
	"slices"
	"time"

	"liveserver/auth"
	"liveserver/middlewares"
	"liveserver/rooms"
	"liveserver/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter は各HTTPリクエストのルーティングを設定する
func SetupRouter(engine *rooms.Engine, provider *auth.Provider, allowOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	//CORS（Cross-Origin Resource Sharing）ポリシーを設定
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || slices.Contains(allowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsConfig))

	// トークン不要のエンドポイント
	router.POST("/user/create", func(c *gin.Context) {
		UserCreate(c, provider, logger)
	})
	router.POST("/room/list", func(c *gin.Context) {
		RoomList(c, engine, logger)
	})
	router.POST("/room/result", func(c *gin.Context) {
		RoomResult(c, engine, logger)
	})

	authorized := router.Group("/", middlewares.AuthMiddleware(provider, logger))
	authorized.GET("/user/me", UserMe)
	authorized.POST("/user/update", func(c *gin.Context) {
		UserUpdate(c, provider, logger)
	})
	authorized.POST("/room/create", func(c *gin.Context) {
		RoomCreate(c, engine, logger)
	})
	authorized.POST("/room/join", func(c *gin.Context) {
		RoomJoin(c, engine, logger)
	})
	authorized.POST("/room/wait", func(c *gin.Context) {
		RoomWait(c, engine, logger)
	})
	authorized.POST("/room/start", func(c *gin.Context) {
		RoomStart(c, engine, logger)
	})
	authorized.POST("/room/end", func(c *gin.Context) {
		RoomEnd(c, engine, logger)
	})
	authorized.POST("/room/leave", func(c *gin.Context) {
		RoomLeave(c, engine, logger)
	})

	return router
}
