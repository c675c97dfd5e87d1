// migrate はテーブルの作成・更新だけを行うコマンド
package main

import (
	"flag"

	"liveserver/database"
	"liveserver/utils"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.json", "設定ファイルのパス")
	flag.Parse()

	logger, err := utils.InitLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // ロガーの終了処理

	logger.Info("マイグレーションを開始します")

	config, err := database.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
	}

	db, err := database.InitPostgreSQL(config, logger)
	if err != nil {
		logger.Fatal("データベースへの接続に失敗しました", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("SQLDBの取得に失敗しました", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}
	logger.Info("users, rooms, room_members テーブルを作成しました")
}
