package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liveserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUserNotFound はトークンに対応するユーザーが存在しない場合に返す
var ErrUserNotFound = errors.New("user not found")

// Provider はユーザーの作成とトークンからのユーザー解決を担当する
type Provider struct {
	db       *gorm.DB
	sessions *SessionCache // nil ならキャッシュしない
	secret   []byte
	logger   *zap.Logger
	now      func() time.Time
}

func NewProvider(db *gorm.DB, sessions *SessionCache, secret string, logger *zap.Logger) *Provider {
	return &Provider{
		db:       db,
		sessions: sessions,
		secret:   []byte(secret),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateUser は新しいユーザーを作成し、そのトークンを返す。
// トークンが衝突した場合は一意になるまで作り直す
func (p *Provider) CreateUser(ctx context.Context, name string, leaderCardID int) (string, error) {
	db := p.db.WithContext(ctx)

	var token string
	for {
		var err error
		token, err = issueToken(p.secret, p.now())
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.User{}).Where("token = ?", token).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check token uniqueness: %w", err)
		}
		if count == 0 {
			break
		}
		p.logger.Warn("トークンが衝突したため再生成します")
	}

	user := models.User{Name: name, Token: token, LeaderCardID: leaderCardID}
	if err := db.Create(&user).Error; err != nil {
		p.logger.Error("ユーザー作成中にエラー発生", zap.Error(err))
		return "", fmt.Errorf("create user: %w", err)
	}

	p.logger.Info("User created", zap.Uint("userID", user.ID))
	return token, nil
}

// Resolve はトークンからユーザーを取得する
func (p *Provider) Resolve(ctx context.Context, token string) (models.User, error) {
	var user models.User
	if err := verifyToken(p.secret, token); err != nil {
		return user, err
	}

	if cached, ok := p.sessions.Get(ctx, token); ok {
		return cached, nil
	}

	if err := p.db.WithContext(ctx).Where("token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, fmt.Errorf("get user by token: %w", err)
	}

	p.sessions.Set(ctx, user)
	return user, nil
}

// UpdateUser は名前とリーダーカードを更新する
func (p *Provider) UpdateUser(ctx context.Context, token, name string, leaderCardID int) error {
	if err := verifyToken(p.secret, token); err != nil {
		return err
	}

	result := p.db.WithContext(ctx).Model(&models.User{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{"name": name, "leader_card_id": leaderCardID})
	if result.Error != nil {
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	// キャッシュに古い名前が残らないようにする
	p.sessions.Delete(ctx, token)
	return nil
}
