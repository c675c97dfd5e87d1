package rooms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liveserver/models"

	"go.uber.org/zap"
)

// DefaultGracePeriod はリザルト集計の猶予時間のデフォルト値
const DefaultGracePeriod = 5 * time.Second

// Engine はルームのライフサイクル（作成・入室・待機・開始・リザルト・退出）を管理します。
// 更新系の操作はルームIDごとのロックとストアの行ロックの両方で直列化されます。
type Engine struct {
	store       Store
	logger      *zap.Logger
	locks       *roomLocks
	gracePeriod time.Duration
	now         func() time.Time
}

type Option func(*Engine)

// WithGracePeriod はリザルト集計の猶予時間を設定する
func WithGracePeriod(d time.Duration) Option {
	return func(e *Engine) {
		e.gracePeriod = d
	}
}

// WithClock はテスト用に現在時刻の取得関数を差し替える
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		logger:      logger,
		locks:       newRoomLocks(),
		gracePeriod: DefaultGracePeriod,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// mutate はルームのロックを取得したうえで fn を1つのトランザクションで実行する
func (e *Engine) mutate(ctx context.Context, roomID uint, fn func(tx Tx) error) error {
	unlock := e.locks.lock(roomID)
	defer unlock()
	return e.store.Atomic(ctx, fn)
}

// Create は新しいルームを作成し、作成者をホストとして入室させる
func (e *Engine) Create(ctx context.Context, userID, liveID uint, difficulty models.LiveDifficulty) (uint, error) {
	if !difficulty.Valid() {
		return 0, fmt.Errorf("%w: difficulty %d", ErrInvalidArgument, difficulty)
	}

	room := models.Room{
		LiveID:          liveID,
		JoinedUserCount: 1,
		MaxUserCount:    models.MaxUserCount,
		Status:          models.RoomWaiting,
	}
	// 新規ルームはコミットされるまで他から見えないため、ルームのロックは不要
	err := e.store.Atomic(ctx, func(tx Tx) error {
		if err := tx.InsertRoom(&room); err != nil {
			return err
		}
		return tx.InsertMember(&models.RoomMember{
			RoomID:           room.ID,
			UserID:           userID,
			SelectDifficulty: difficulty,
			IsHost:           true,
		})
	})
	if err != nil {
		e.logger.Error("Failed to create room", zap.Uint("userID", userID), zap.Error(err))
		return 0, err
	}

	e.logger.Info("Room created", zap.Uint("roomID", room.ID), zap.Uint("liveID", liveID), zap.Uint("hostID", userID))
	return room.ID, nil
}

// List は入室可能（Waiting）なルームを返す。liveID が0なら全楽曲が対象
func (e *Engine) List(ctx context.Context, liveID uint) ([]models.RoomInfo, error) {
	rooms, err := e.store.View(ctx).ListRooms(models.RoomFilter{
		LiveID: liveID,
		Status: models.RoomWaiting,
	})
	if err != nil {
		return nil, err
	}

	infos := make([]models.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, models.RoomInfo{
			RoomID:          room.ID,
			LiveID:          room.LiveID,
			JoinedUserCount: room.JoinedUserCount,
			MaxUserCount:    room.MaxUserCount,
		})
	}
	return infos, nil
}

// Join はルームへの入室を試みる。
// 状態・人数のチェックと更新は同じロックの中で行い、同時入室で定員を超えないようにする
func (e *Engine) Join(ctx context.Context, roomID uint, difficulty models.LiveDifficulty, userID uint) (models.JoinRoomResult, error) {
	if !difficulty.Valid() {
		return models.JoinOtherError, fmt.Errorf("%w: difficulty %d", ErrInvalidArgument, difficulty)
	}

	result := models.JoinOtherError
	err := e.mutate(ctx, roomID, func(tx Tx) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return err
		}

		switch {
		case room.Status != models.RoomWaiting:
			result = models.JoinDisbanded
			return nil
		case room.JoinedUserCount >= room.MaxUserCount:
			result = models.JoinRoomFull
			return nil
		case room.JoinedUserCount == 0:
			// 全員退出済みだがまだ解散処理されていないルーム
			result = models.JoinDisbanded
			return nil
		}

		if _, err := tx.GetMember(roomID, userID); err == nil {
			// すでに参加済み。二重に数えない
			result = models.JoinOtherError
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := tx.InsertMember(&models.RoomMember{
			RoomID:           roomID,
			UserID:           userID,
			SelectDifficulty: difficulty,
		}); err != nil {
			return err
		}
		if err := tx.UpdateRoom(roomID, map[string]interface{}{
			"joined_user_count": room.JoinedUserCount + 1,
		}); err != nil {
			return err
		}
		result = models.JoinOk
		return nil
	})
	if err != nil {
		e.logger.Error("Failed to join room", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Error(err))
		return models.JoinOtherError, err
	}

	e.logger.Info("Join room", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Stringer("result", result))
	return result, nil
}

// Wait は待機画面のポーリング用。ルームの状態と参加者一覧を返す
func (e *Engine) Wait(ctx context.Context, roomID, userID uint) (models.RoomStatus, []models.RoomUser, error) {
	view := e.store.View(ctx)
	room, err := view.GetRoom(roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// 解散済みルームは墓標として残すため、ここで消えているのはストア側の不整合
			return 0, nil, fmt.Errorf("%w: room %d vanished while waiting", ErrConsistency, roomID)
		}
		return 0, nil, err
	}

	users, err := view.ListRoomUsers(roomID)
	if err != nil {
		return 0, nil, err
	}
	for i := range users {
		users[i].IsMe = users[i].UserID == userID
	}
	return room.Status, users, nil
}

// Start はホストがライブを開始する。ホスト以外は ErrForbidden
func (e *Engine) Start(ctx context.Context, roomID, userID uint) error {
	err := e.mutate(ctx, roomID, func(tx Tx) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return err
		}
		member, err := tx.GetMember(roomID, userID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: user %d is not a member of room %d", ErrConsistency, userID, roomID)
			}
			return err
		}
		if !member.IsHost {
			return fmt.Errorf("%w: user %d is not the host of room %d", ErrForbidden, userID, roomID)
		}

		if room.Status == models.RoomLiveStart {
			return nil
		}
		if !room.Status.CanTransitionTo(models.RoomLiveStart) {
			return fmt.Errorf("%w: room %d is %s", ErrConsistency, roomID, room.Status)
		}
		fields := map[string]interface{}{"status": int(models.RoomLiveStart)}
		if room.SettledAt == nil {
			fields["settled_at"] = e.now()
		}
		return tx.UpdateRoom(roomID, fields)
	})
	if err != nil {
		e.logger.Warn("Failed to start live", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Error(err))
		return err
	}

	e.logger.Info("Live started", zap.Uint("roomID", roomID), zap.Uint("hostID", userID))
	return nil
}

// normalizeJudgeCounts は判定数を5要素に揃える。足りない分は0で埋め、余分は切り捨てる
func normalizeJudgeCounts(counts []int) ([]int, error) {
	out := make([]int, models.JudgeCountSlots)
	for i := 0; i < len(counts) && i < models.JudgeCountSlots; i++ {
		if counts[i] < 0 {
			return nil, fmt.Errorf("%w: negative judge count %d", ErrInvalidArgument, counts[i])
		}
		out[i] = counts[i]
	}
	return out, nil
}

// RecordResult はライブ終了時に各プレイヤーの判定数とスコアを記録する。
// 2回呼ばれた場合は上書きする（加算しない）
func (e *Engine) RecordResult(ctx context.Context, roomID, userID uint, judgeCounts []int, score int) error {
	counts, err := normalizeJudgeCounts(judgeCounts)
	if err != nil {
		return err
	}
	if score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidArgument, score)
	}

	err = e.mutate(ctx, roomID, func(tx Tx) error {
		if _, err := tx.LockRoom(roomID); err != nil {
			return err
		}
		return tx.UpdateMember(roomID, userID, map[string]interface{}{
			"perfect": counts[0],
			"great":   counts[1],
			"good":    counts[2],
			"bad":     counts[3],
			"miss":    counts[4],
			"score":   score,
		})
	})
	if err != nil {
		e.logger.Error("Failed to record result", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Error(err))
		return err
	}

	e.logger.Info("Result recorded", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Int("score", score))
	return nil
}

// Leave はルームから退出する。
// ホストが抜ける場合は残りの最初のメンバーにホストを委譲し、最後の1人ならルームを解散する
func (e *Engine) Leave(ctx context.Context, roomID, userID uint) error {
	var newHost uint
	var dissolved bool

	err := e.mutate(ctx, roomID, func(tx Tx) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return err
		}
		me, err := tx.GetMember(roomID, userID)
		if err != nil {
			return err
		}

		if me.IsHost {
			members, err := tx.ListMembers(roomID)
			if err != nil {
				return err
			}
			for _, m := range members {
				if m.UserID == userID {
					continue
				}
				if err := tx.UpdateMember(roomID, m.UserID, map[string]interface{}{"is_host": true}); err != nil {
					return err
				}
				newHost = m.UserID
				break
			}
		}

		if err := tx.DeleteMember(roomID, userID); err != nil {
			return err
		}

		if me.IsHost && newHost == 0 {
			// 誰もいなくなったので解散。ポーリング中のクライアントのため行は墓標として残す
			dissolved = true
			fields := map[string]interface{}{
				"status":            int(models.RoomDissolution),
				"joined_user_count": 0,
			}
			if room.SettledAt == nil {
				fields["settled_at"] = e.now()
			}
			return tx.UpdateRoom(roomID, fields)
		}

		count := room.JoinedUserCount - 1
		if count < 0 {
			return fmt.Errorf("%w: room %d joined_user_count would drop below zero", ErrConsistency, roomID)
		}
		return tx.UpdateRoom(roomID, map[string]interface{}{"joined_user_count": count})
	})
	if err != nil {
		e.logger.Error("Failed to leave room", zap.Uint("roomID", roomID), zap.Uint("userID", userID), zap.Error(err))
		return err
	}

	switch {
	case dissolved:
		e.logger.Info("Room dissolved", zap.Uint("roomID", roomID), zap.Uint("lastUserID", userID))
	case newHost != 0:
		e.logger.Info("Host handed over", zap.Uint("roomID", roomID), zap.Uint("from", userID), zap.Uint("to", newHost))
	default:
		e.logger.Info("Left room", zap.Uint("roomID", roomID), zap.Uint("userID", userID))
	}
	return nil
}
