package rooms

import (
	"context"

	"liveserver/models"
)

// Store はルームとメンバーを保持するトランザクショナルなストア。
// 実装は database.RoomStore（gorm）を参照
type Store interface {
	// Atomic は fn を1つのトランザクションで実行する。fn がエラーを返せば全体がロールバックされる
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	// View はロックを取らない読み取り用の Tx を返す
	View(ctx context.Context) Tx
}

// Tx はトランザクション内で使える操作の集合
type Tx interface {
	// LockRoom はルームの行を排他ロックして読み込む（SELECT ... FOR UPDATE）
	LockRoom(roomID uint) (*models.Room, error)
	GetRoom(roomID uint) (*models.Room, error)
	InsertRoom(room *models.Room) error
	UpdateRoom(roomID uint, fields map[string]interface{}) error
	DeleteRoom(roomID uint) error
	ListRooms(filter models.RoomFilter) ([]models.Room, error)

	InsertMember(member *models.RoomMember) error
	GetMember(roomID, userID uint) (*models.RoomMember, error)
	UpdateMember(roomID, userID uint, fields map[string]interface{}) error
	DeleteMember(roomID, userID uint) error
	// ListMembers は入室順（同時刻ならユーザーID順）で返す
	ListMembers(roomID uint) ([]models.RoomMember, error)
	// ListRoomUsers はメンバーとユーザー情報を結合して返す。IsMe は呼び出し側で埋める
	ListRoomUsers(roomID uint) ([]models.RoomUser, error)
}
