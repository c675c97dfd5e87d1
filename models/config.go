package models

import "time"

// Config 構造体はサーバー全体の設定情報を保持します。
// config.json のキーと同名の環境変数（大文字）で上書きできます。
type Config struct {
	DBHost     string `json:"db_host" mapstructure:"db_host"`
	DBPort     int    `json:"db_port" mapstructure:"db_port"`
	DBUser     string `json:"db_user" mapstructure:"db_user"`
	DBPassword string `json:"db_password" mapstructure:"db_password"`
	DBName     string `json:"db_name" mapstructure:"db_name"`
	DBSSLMode  string `json:"db_sslmode" mapstructure:"db_sslmode"`

	RedisAddr     string `json:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" mapstructure:"redis_db"`

	JWTSecret  string        `json:"jwt_secret" mapstructure:"jwt_secret"`
	SessionTTL time.Duration `json:"session_ttl" mapstructure:"session_ttl"`

	HTTPAddr     string   `json:"http_addr" mapstructure:"http_addr"`
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`

	// リザルト集計の猶予時間。settled_at からこの時間が経つまで結果は空
	ResultGracePeriod  time.Duration `json:"result_grace_period" mapstructure:"result_grace_period"`
	TombstoneRetention time.Duration `json:"tombstone_retention" mapstructure:"tombstone_retention"`
	CleanupSchedule    string        `json:"cleanup_schedule" mapstructure:"cleanup_schedule"`
}
