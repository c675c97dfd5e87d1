package rooms

import (
	"context"

	"liveserver/models"

	"go.uber.org/zap"
)

// Result はルーム全体のリザルトを返す。
// ライブ開始前、猶予時間内、または未送信のメンバーがいる間は空のリストを返し、
// 一部のメンバーだけのリザルトは決して返さない
func (e *Engine) Result(ctx context.Context, roomID uint) ([]models.ResultUser, error) {
	view := e.store.View(ctx)
	room, err := view.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	empty := []models.ResultUser{}
	if room.Status == models.RoomWaiting {
		return empty, nil
	}
	if room.SettledAt == nil || e.now().Sub(*room.SettledAt) < e.gracePeriod {
		return empty, nil
	}

	members, err := view.ListMembers(roomID)
	if err != nil {
		return nil, err
	}

	results := make([]models.ResultUser, 0, len(members))
	for _, m := range members {
		if !m.Reported() {
			e.logger.Debug("Result not settled yet", zap.Uint("roomID", roomID), zap.Uint("pendingUserID", m.UserID))
			return empty, nil
		}
		results = append(results, models.ResultUser{
			UserID:         m.UserID,
			JudgeCountList: m.JudgeCounts(),
			Score:          m.Score,
		})
	}
	return results, nil
}
