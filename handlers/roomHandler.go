package handlers

import (
	"net/http"

	"liveserver/middlewares"
	"liveserver/models"
	"liveserver/rooms"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// currentUser は認証済みユーザーを取り出す。取れなければ401で応答して false を返す
func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middlewares.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
	}
	return user, ok
}

func bindJSON(c *gin.Context, logger *zap.Logger, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		logger.Warn("Request binding error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// RoomCreate は新規のルームを作成する
func RoomCreate(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomCreateRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	roomID, err := engine.Create(c.Request.Context(), user.ID, request.LiveID, request.SelectDifficulty)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, models.RoomCreateResponse{RoomID: roomID})
}

// RoomList は入れるルームの一覧を返す
func RoomList(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	var request models.RoomListRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	infos, err := engine.List(c.Request.Context(), request.LiveID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, models.RoomListResponse{RoomInfoList: infos})
}

// RoomJoin はルームへの入室を行う
func RoomJoin(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomJoinRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	result, err := engine.Join(c.Request.Context(), request.RoomID, request.SelectDifficulty, user.ID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, models.RoomJoinResponse{JoinRoomResult: result})
}

// RoomWait は待機画面のポーリング
func RoomWait(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomIDRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	status, users, err := engine.Wait(c.Request.Context(), request.RoomID, user.ID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if users == nil {
		users = []models.RoomUser{}
	}
	c.JSON(http.StatusOK, models.RoomWaitResponse{Status: status, RoomUserList: users})
}

// RoomStart はライブを開始する（ホストのみ）
func RoomStart(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomIDRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	if err := engine.Start(c.Request.Context(), request.RoomID, user.ID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// RoomEnd はライブ終了時に自分のリザルトを送信する
func RoomEnd(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomEndRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	err := engine.RecordResult(c.Request.Context(), request.RoomID, user.ID, request.JudgeCountList, request.Score)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// RoomResult はルーム全体のリザルト。揃うまでは空のリストを返す
func RoomResult(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	var request models.RoomIDRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	results, err := engine.Result(c.Request.Context(), request.RoomID)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, models.RoomResultResponse{ResultUserList: results})
}

// RoomLeave はルームからの退出
func RoomLeave(c *gin.Context, engine *rooms.Engine, logger *zap.Logger) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var request models.RoomIDRequest
	if !bindJSON(c, logger, &request) {
		return
	}

	if err := engine.Leave(c.Request.Context(), request.RoomID, user.ID); err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
