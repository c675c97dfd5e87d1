package rooms

import (
	"context"
	"errors"
	"time"

	"liveserver/models"

	"go.uber.org/zap"
)

// Reap は定期清掃用。
// 1. 人数が0なのに Waiting のまま残っているルームを解散させる
// 2. retention より前に解散した墓標ルームを物理削除する
// 処理したルーム数を返す
func (e *Engine) Reap(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := e.now().Add(-retention)
	view := e.store.View(ctx)

	abandoned, err := view.ListRooms(models.RoomFilter{
		Status:        models.RoomWaiting,
		EmptyOnly:     true,
		UpdatedBefore: cutoff,
	})
	if err != nil {
		return 0, err
	}
	tombstones, err := view.ListRooms(models.RoomFilter{
		Status:        models.RoomDissolution,
		SettledBefore: cutoff,
	})
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, room := range abandoned {
		dissolved := false
		err := e.mutate(ctx, room.ID, func(tx Tx) error {
			locked, err := tx.LockRoom(room.ID)
			if err != nil {
				return err
			}
			// ロック取得までの間に誰かが入室していれば対象外
			if locked.Status != models.RoomWaiting || locked.JoinedUserCount != 0 {
				return nil
			}
			dissolved = true
			return tx.UpdateRoom(room.ID, map[string]interface{}{
				"status":     int(models.RoomDissolution),
				"settled_at": e.now(),
			})
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return reaped, err
		}
		if dissolved {
			reaped++
		}
	}

	for _, room := range tombstones {
		err := e.mutate(ctx, room.ID, func(tx Tx) error {
			members, err := tx.ListMembers(room.ID)
			if err != nil {
				return err
			}
			for _, m := range members {
				if err := tx.DeleteMember(room.ID, m.UserID); err != nil {
					return err
				}
			}
			return tx.DeleteRoom(room.ID)
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return reaped, err
		}
		reaped++
	}

	if reaped > 0 {
		e.logger.Info("Rooms reaped", zap.Int("abandoned", len(abandoned)), zap.Int("tombstones", len(tombstones)))
	}
	return reaped, nil
}
