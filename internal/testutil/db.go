// Package testutil はテスト用のデータベースとフィクスチャを提供する
package testutil

import (
	"testing"

	"liveserver/database"
	"liveserver/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB はテストごとに独立したインメモリSQLiteを返す。
// コネクションを1本に絞るので、トランザクションは自然に直列化される
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser はトークン発行を経由せずにユーザーを作成する
func CreateUser(t testing.TB, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{Name: name, Token: "token-" + name, LeaderCardID: 1}
	require.NoError(t, db.Create(&user).Error)
	return user
}
