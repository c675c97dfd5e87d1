package models

import (
	"gorm.io/gorm"
)

// User モデルの定義
type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Token        string `gorm:"uniqueIndex;not null"` // 認証用のトークン。クライアントには返さない
	LeaderCardID int    `gorm:"not null;default:0"`
}

// SafeUser はトークンを含まないユーザー情報です。
type SafeUser struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	LeaderCardID int    `json:"leader_card_id"`
}

func (u User) Safe() SafeUser {
	return SafeUser{ID: u.ID, Name: u.Name, LeaderCardID: u.LeaderCardID}
}
