package database

import (
	"context"
	"errors"
	"fmt"

	"liveserver/models"
	"liveserver/rooms"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomStore は rooms.Store の gorm 実装
type RoomStore struct {
	db *gorm.DB
}

func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db}
}

func (s *RoomStore) Atomic(ctx context.Context, fn func(tx rooms.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&roomTx{db: tx})
	})
}

func (s *RoomStore) View(ctx context.Context) rooms.Tx {
	return &roomTx{db: s.db.WithContext(ctx)}
}

type roomTx struct {
	db *gorm.DB
}

func (t *roomTx) LockRoom(roomID uint) (*models.Room, error) {
	// 主キーなので1行のはずだが、複数返ってきた場合は不整合として扱う
	var found []models.Room
	if err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", roomID).
		Limit(2).
		Find(&found).Error; err != nil {
		return nil, fmt.Errorf("lock room %d: %w", roomID, err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: room %d", rooms.ErrNotFound, roomID)
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: %d rows for room %d", rooms.ErrConsistency, len(found), roomID)
}

func (t *roomTx) GetRoom(roomID uint) (*models.Room, error) {
	var room models.Room
	if err := t.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: room %d", rooms.ErrNotFound, roomID)
		}
		return nil, fmt.Errorf("get room %d: %w", roomID, err)
	}
	return &room, nil
}

func (t *roomTx) InsertRoom(room *models.Room) error {
	if err := t.db.Omit(clause.Associations).Create(room).Error; err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (t *roomTx) UpdateRoom(roomID uint, fields map[string]interface{}) error {
	result := t.db.Model(&models.Room{}).Where("id = ?", roomID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update room %d: %w", roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: room %d", rooms.ErrNotFound, roomID)
	}
	return nil
}

// DeleteRoom はルームを物理削除する
func (t *roomTx) DeleteRoom(roomID uint) error {
	result := t.db.Unscoped().Where("id = ?", roomID).Delete(&models.Room{})
	if result.Error != nil {
		return fmt.Errorf("delete room %d: %w", roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: room %d", rooms.ErrNotFound, roomID)
	}
	return nil
}

func (t *roomTx) ListRooms(filter models.RoomFilter) ([]models.Room, error) {
	query := t.db.Model(&models.Room{})
	if filter.LiveID != 0 {
		query = query.Where("live_id = ?", filter.LiveID)
	}
	if filter.Status != 0 {
		query = query.Where("status = ?", int(filter.Status))
	}
	if filter.EmptyOnly {
		query = query.Where("joined_user_count = 0")
	}
	if !filter.SettledBefore.IsZero() {
		query = query.Where("settled_at IS NOT NULL AND settled_at < ?", filter.SettledBefore)
	}
	if !filter.UpdatedBefore.IsZero() {
		query = query.Where("updated_at < ?", filter.UpdatedBefore)
	}

	var found []models.Room
	if err := query.Order("id").Find(&found).Error; err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return found, nil
}

func (t *roomTx) InsertMember(member *models.RoomMember) error {
	if err := t.db.Create(member).Error; err != nil {
		return fmt.Errorf("insert member (room %d, user %d): %w", member.RoomID, member.UserID, err)
	}
	return nil
}

func (t *roomTx) GetMember(roomID, userID uint) (*models.RoomMember, error) {
	var member models.RoomMember
	err := t.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d in room %d", rooms.ErrNotFound, userID, roomID)
		}
		return nil, fmt.Errorf("get member (room %d, user %d): %w", roomID, userID, err)
	}
	return &member, nil
}

func (t *roomTx) UpdateMember(roomID, userID uint, fields map[string]interface{}) error {
	result := t.db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update member (room %d, user %d): %w", roomID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d in room %d", rooms.ErrNotFound, userID, roomID)
	}
	return nil
}

func (t *roomTx) DeleteMember(roomID, userID uint) error {
	result := t.db.Where("room_id = ? AND user_id = ?", roomID, userID).Delete(&models.RoomMember{})
	if result.Error != nil {
		return fmt.Errorf("delete member (room %d, user %d): %w", roomID, userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d in room %d", rooms.ErrNotFound, userID, roomID)
	}
	return nil
}

func (t *roomTx) ListMembers(roomID uint) ([]models.RoomMember, error) {
	var members []models.RoomMember
	if err := t.db.Where("room_id = ?", roomID).
		Order("created_at, user_id").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("list members of room %d: %w", roomID, err)
	}
	return members, nil
}

func (t *roomTx) ListRoomUsers(roomID uint) ([]models.RoomUser, error) {
	var users []models.RoomUser
	err := t.db.Table("room_members").
		Select("room_members.user_id, users.name, users.leader_card_id, room_members.select_difficulty, room_members.is_host").
		Joins("JOIN users ON users.id = room_members.user_id").
		Where("room_members.room_id = ?", roomID).
		Order("room_members.created_at, room_members.user_id").
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list users of room %d: %w", roomID, err)
	}
	return users, nil
}
