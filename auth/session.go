package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"liveserver/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionCache はトークン → ユーザー情報を Redis にキャッシュする。
// キャッシュに失敗してもDBから引けばよいので、エラーはログに残すだけ
type SessionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *SessionCache {
	return &SessionCache{rdb: rdb, ttl: ttl, logger: logger}
}

func sessionKey(token string) string {
	return "session:" + token
}

type sessionInfo struct {
	UserID       uint   `json:"userID"`
	Name         string `json:"name"`
	LeaderCardID int    `json:"leaderCardID"`
}

// Get はキャッシュされたユーザーを返す。見つからなければ ok=false
func (s *SessionCache) Get(ctx context.Context, token string) (models.User, bool) {
	var user models.User
	if s == nil {
		return user, false
	}

	raw, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Failed to retrieve session info", zap.Error(err))
		}
		return user, false
	}

	var info sessionInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		s.logger.Warn("Failed to decode session info", zap.Error(err))
		return user, false
	}
	user.ID = info.UserID
	user.Name = info.Name
	user.LeaderCardID = info.LeaderCardID
	user.Token = token
	return user, true
}

func (s *SessionCache) Set(ctx context.Context, user models.User) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(sessionInfo{UserID: user.ID, Name: user.Name, LeaderCardID: user.LeaderCardID})
	if err != nil {
		s.logger.Warn("Error encoding session info", zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, sessionKey(user.Token), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("Error storing session info in Redis", zap.Error(err))
	}
}

func (s *SessionCache) Delete(ctx context.Context, token string) {
	if s == nil {
		return
	}
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		s.logger.Warn("Error deleting session info in Redis", zap.Error(err))
	}
}
