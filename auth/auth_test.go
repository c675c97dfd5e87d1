package auth

import (
	"context"
	"testing"
	"time"

	"liveserver/internal/testutil"
	"liveserver/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestProvider(t *testing.T) (*Provider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sessions := NewSessionCache(rdb, time.Hour, zap.NewNop())
	return NewProvider(testutil.NewDB(t), sessions, testSecret, zap.NewNop()), mr
}

func TestCreateUserAndResolve(t *testing.T) {
	p, mr := newTestProvider(t)
	ctx := context.Background()

	token, err := p.CreateUser(ctx, "alice", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := p.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, 3, user.LeaderCardID)
	assert.True(t, mr.Exists(sessionKey(token)), "resolved user must be cached")

	// 2回目はキャッシュから返る
	cached, err := p.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, cached.ID)
	assert.Equal(t, user.Name, cached.Name)
}

func TestCreateUser_TokensAreUnique(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		token, err := p.CreateUser(ctx, "user", 1)
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token issued")
		seen[token] = true
	}
}

func TestResolve_Errors(t *testing.T) {
	p, _ := newTestProvider(t)
	ctx := context.Background()

	forged, err := issueToken([]byte("other-secret"), time.Now())
	require.NoError(t, err)
	orphan, err := issueToken([]byte(testSecret), time.Now())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-token", wantErr: ErrInvalidToken},
		{name: "wrong signature", token: forged, wantErr: ErrInvalidToken},
		{name: "valid but unknown", token: orphan, wantErr: ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Resolve(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	p, mr := newTestProvider(t)
	ctx := context.Background()

	token, err := p.CreateUser(ctx, "before", 1)
	require.NoError(t, err)
	_, err = p.Resolve(ctx, token)
	require.NoError(t, err)
	require.True(t, mr.Exists(sessionKey(token)))

	require.NoError(t, p.UpdateUser(ctx, token, "after", 7))
	assert.False(t, mr.Exists(sessionKey(token)), "stale session must be dropped")

	user, err := p.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "after", user.Name)
	assert.Equal(t, 7, user.LeaderCardID)

	orphan, err := issueToken([]byte(testSecret), time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, p.UpdateUser(ctx, orphan, "x", 1), ErrUserNotFound)
}

func TestSessionCache_RedisDown(t *testing.T) {
	p, mr := newTestProvider(t)
	ctx := context.Background()

	token, err := p.CreateUser(ctx, "bob", 2)
	require.NoError(t, err)

	// Redis が落ちていてもDBから解決できる
	mr.Close()
	user, err := p.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Name)
}

func TestSessionCache_Nil(t *testing.T) {
	var s *SessionCache
	_, ok := s.Get(context.Background(), "x")
	assert.False(t, ok)
	s.Set(context.Background(), models.User{Token: "x"})
	s.Delete(context.Background(), "x")
}
