package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"liveserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoadConfig は config.json から設定を読み込む。
// 同名の環境変数（DB_HOST など）があればそちらを優先し、ファイルが無ければデフォルト値を使う
func LoadConfig(filename string) (models.Config, error) {
	var config models.Config

	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("json")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "liveserver")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("session_ttl", "24h")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("result_grace_period", "5s")
	v.SetDefault("tombstone_retention", "1h")
	v.SetDefault("cleanup_schedule", "@every 10m")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return config, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("設定の解析に失敗しました: %w", err)
	}
	if config.JWTSecret == "" {
		return config, errors.New("jwt_secret is required")
	}
	return config, nil
}

// DSN は PostgreSQL の接続文字列を組み立てる
func DSN(config models.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s password=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBName, config.DBPassword, config.DBSSLMode)
}

func InitPostgreSQL(config models.Config, logger *zap.Logger) (*gorm.DB, error) {
	dsn := DSN(config)

	const maxRetries = 3
	const retryInterval = 5 * time.Second
	var err error
	for i := 0; i <= maxRetries; i++ {
		var gormDB *gorm.DB
		gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return gormDB, nil
		}
		logger.Error("データベース接続のリトライ", zap.Int("retry", i), zap.Error(err))
		if i < maxRetries {
			time.Sleep(retryInterval)
		}
	}
	return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
}

// AutoMigrate はユーザー・ルーム・メンバーのテーブルを作成または更新する
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Room{}, &models.RoomMember{})
}

func InitRedis(config models.Config, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	// Redisへの接続テスト
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Error("Failed to connect to Redis", zap.Error(err))
		return nil, err
	}

	logger.Info("Connected to Redis", zap.String("addr", config.RedisAddr))
	return rdb, nil
}
