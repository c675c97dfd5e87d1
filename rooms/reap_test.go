package rooms_test

import (
	"context"
	"testing"
	"time"

	"liveserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.users(t, "a", "b", "c")

	// 解散済みの墓標
	dissolved, err := f.engine.Create(ctx, u[0].ID, 1, models.DifficultyNormal)
	require.NoError(t, err)
	require.NoError(t, f.engine.Leave(ctx, dissolved, u[0].ID))

	// 人数0のまま放置された Waiting ルーム
	abandoned, err := f.engine.Create(ctx, u[1].ID, 1, models.DifficultyNormal)
	require.NoError(t, err)
	require.NoError(t, f.db.Where("room_id = ?", abandoned).Delete(&models.RoomMember{}).Error)
	require.NoError(t, f.db.Model(&models.Room{}).Where("id = ?", abandoned).
		Updates(map[string]interface{}{"joined_user_count": 0, "updated_at": f.clock.Now().Add(-2 * time.Hour)}).Error)

	// 稼働中のルームは対象外
	active, err := f.engine.Create(ctx, u[2].ID, 1, models.DifficultyNormal)
	require.NoError(t, err)

	// 保持期間内なので墓標はまだ消えない
	reaped, err := f.engine.Reap(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)
	assert.Equal(t, models.RoomDissolution, f.room(t, abandoned).Status)
	assert.Equal(t, models.RoomDissolution, f.room(t, dissolved).Status)

	f.clock.Advance(2 * time.Hour)
	reaped, err = f.engine.Reap(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, reaped)

	var count int64
	require.NoError(t, f.db.Model(&models.Room{}).Unscoped().Where("id IN ?", []uint{dissolved, abandoned}).Count(&count).Error)
	assert.Zero(t, count)

	room := f.room(t, active)
	assert.Equal(t, models.RoomWaiting, room.Status)
	assert.Equal(t, 1, room.JoinedUserCount)
}
