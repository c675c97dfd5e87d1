package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reaper は定期清掃の対象（rooms.Engine が実装）
type Reaper interface {
	Reap(ctx context.Context, retention time.Duration) (int, error)
}

// CronCleaner は解散済みルームの削除と放置ルームの解散を定期実行する。
// 返した *cron.Cron はシャットダウン時に Stop すること
func CronCleaner(reaper Reaper, schedule string, retention time.Duration, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		logger.Info("ルームの清掃処理を開始")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		reaped, err := reaper.Reap(ctx, retention)
		if err != nil {
			logger.Error("ルームの清掃に失敗しました", zap.Error(err))
			return
		}
		logger.Info("ルームの清掃完了", zap.Int("rooms_reaped", reaped))
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
