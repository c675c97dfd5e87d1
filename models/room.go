package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxUserCount は1ルームに参加できる最大人数
const MaxUserCount = 4

// JudgeCountSlots は perfect, great, good, bad, miss の5段階
const JudgeCountSlots = 5

// RoomStatus はルームのライフサイクル状態です。
// Waiting → LiveStart → Dissolution、または Waiting → Dissolution の順にしか進みません。
type RoomStatus int

const (
	RoomWaiting     RoomStatus = 1 // ホストがライブ開始ボタンを押すまで
	RoomLiveStart   RoomStatus = 2 // ライブ画面遷移OK
	RoomDissolution RoomStatus = 3 // 全員退出して解散済み
)

func (s RoomStatus) String() string {
	switch s {
	case RoomWaiting:
		return "waiting"
	case RoomLiveStart:
		return "live_start"
	case RoomDissolution:
		return "dissolution"
	}
	return "unknown"
}

// CanTransitionTo は状態が前にしか進まないことを保証します。
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	switch s {
	case RoomWaiting:
		return next == RoomLiveStart || next == RoomDissolution
	case RoomLiveStart:
		return next == RoomDissolution
	}
	return false
}

// LiveDifficulty は参加者が選択した難易度
type LiveDifficulty int

const (
	DifficultyNormal LiveDifficulty = 1
	DifficultyHard   LiveDifficulty = 2
)

func (d LiveDifficulty) Valid() bool {
	return d == DifficultyNormal || d == DifficultyHard
}

func (d LiveDifficulty) String() string {
	switch d {
	case DifficultyNormal:
		return "normal"
	case DifficultyHard:
		return "hard"
	}
	return "unknown"
}

// JoinRoomResult は入室リクエストの結果。満室や解散は例外ではなく通常の結果として返す
type JoinRoomResult int

const (
	JoinOk         JoinRoomResult = 1
	JoinRoomFull   JoinRoomResult = 2
	JoinDisbanded  JoinRoomResult = 3
	JoinOtherError JoinRoomResult = 4
)

func (r JoinRoomResult) String() string {
	switch r {
	case JoinOk:
		return "ok"
	case JoinRoomFull:
		return "room_full"
	case JoinDisbanded:
		return "disbanded"
	case JoinOtherError:
		return "other_error"
	}
	return "unknown"
}

// Room モデルの定義
type Room struct {
	gorm.Model
	LiveID          uint         `gorm:"not null;index"`
	JoinedUserCount int          `gorm:"not null"`
	MaxUserCount    int          `gorm:"not null"`
	Status          RoomStatus   `gorm:"not null;index"`
	SettledAt       *time.Time   // Waiting から抜けた時刻。一度だけセットされる
	Members         []RoomMember `gorm:"foreignKey:RoomID"`
}

// RoomMember はルームとユーザーの参加関係。退出時に物理削除する
type RoomMember struct {
	RoomID           uint           `gorm:"primaryKey;autoIncrement:false"`
	UserID           uint           `gorm:"primaryKey;autoIncrement:false;index"`
	SelectDifficulty LiveDifficulty `gorm:"not null"`
	IsHost           bool           `gorm:"not null"`
	Perfect          int            `gorm:"not null"`
	Great            int            `gorm:"not null"`
	Good             int            `gorm:"not null"`
	Bad              int            `gorm:"not null"`
	Miss             int            `gorm:"not null"`
	Score            int            `gorm:"not null"`
	CreatedAt        time.Time      // 入室順。ホスト委譲の順序に使う
	UpdatedAt        time.Time
}

// JudgeCounts は判定数を perfect, great, good, bad, miss の順で返します。
func (m RoomMember) JudgeCounts() []int {
	return []int{m.Perfect, m.Great, m.Good, m.Bad, m.Miss}
}

// Reported はメンバーがリザルトを送信済みかどうか。判定数の合計が0なら未送信とみなす
func (m RoomMember) Reported() bool {
	sum := 0
	for _, n := range m.JudgeCounts() {
		sum += n
	}
	return sum > 0
}

// RoomFilter はルーム一覧の絞り込み条件。ゼロ値の項目は条件に含めない
type RoomFilter struct {
	LiveID        uint
	Status        RoomStatus
	EmptyOnly     bool
	SettledBefore time.Time
	UpdatedBefore time.Time
}
