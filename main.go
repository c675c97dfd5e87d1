package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"liveserver/auth"     //ユーザー作成とトークン解決
	"liveserver/database" //設定の読み込み、PostgreSQLとRedisの初期化
	"liveserver/handlers" //HTTPリクエストのルーティング
	"liveserver/rooms"    //ルームのライフサイクルとリザルト集計
	"liveserver/utils"    //ロガーの初期化とCronジョブ(ルームの定期クリーンナップ)

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

func main() {
	logger, err := utils.InitLogger() // ロガーの初期化
	if err != nil {
		panic(err) // 失敗した場合はプログラム停止
	}
	defer logger.Sync() // ロガーのクリーンアップ

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := database.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("設定ファイルの読み込みに失敗しました", zap.Error(err))
	}

	// 非同期でPostgreSQLとRedisの初期化
	var db *gorm.DB
	var rdb *redis.Client
	done := make(chan bool)

	go func() {
		var err error
		db, err = database.InitPostgreSQL(config, logger)
		if err != nil {
			logger.Fatal("PostgreSQLの初期化に失敗しました", zap.Error(err))
		}
		if err := database.AutoMigrate(db); err != nil {
			logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
		}
		done <- true
	}()

	go func() {
		var err error
		rdb, err = database.InitRedis(config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		done <- true
	}()

	// 2つの初期化が完了するのを待つ
	<-done
	<-done
	defer rdb.Close()

	sessions := auth.NewSessionCache(rdb, config.SessionTTL, logger)
	provider := auth.NewProvider(db, sessions, config.JWTSecret, logger)
	engine := rooms.NewEngine(database.NewRoomStore(db), logger, rooms.WithGracePeriod(config.ResultGracePeriod))

	// クーロンスケジューラのセットアップと呼び出し
	cleaner, err := utils.CronCleaner(engine, config.CleanupSchedule, config.TombstoneRetention, logger)
	if err != nil {
		logger.Fatal("Cronジョブの登録に失敗しました", zap.Error(err))
	}

	router := handlers.SetupRouter(engine, provider, config.AllowOrigins, logger)
	srv := &http.Server{
		Addr:    config.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", config.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	<-cleaner.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited gracefully")
}
