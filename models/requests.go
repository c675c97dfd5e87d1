package models

// リクエスト・レスポンスのスキーマ定義。JSONのキーはクライアントと合わせてスネークケース

type UserCreateRequest struct {
	UserName     string `json:"user_name" binding:"required"`
	LeaderCardID int    `json:"leader_card_id"`
}

type UserCreateResponse struct {
	UserToken string `json:"user_token"`
}

type RoomCreateRequest struct {
	LiveID           uint           `json:"live_id" binding:"required"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty" binding:"required"`
}

type RoomCreateResponse struct {
	RoomID uint `json:"room_id"`
}

// RoomListRequest の LiveID が0の場合は全ての楽曲のルームを返す
type RoomListRequest struct {
	LiveID uint `json:"live_id"`
}

// RoomInfo はルーム一覧の1行分
type RoomInfo struct {
	RoomID          uint `json:"room_id"`
	LiveID          uint `json:"live_id"`
	JoinedUserCount int  `json:"joined_user_count"`
	MaxUserCount    int  `json:"max_user_count"`
}

type RoomListResponse struct {
	RoomInfoList []RoomInfo `json:"room_info_list"`
}

type RoomJoinRequest struct {
	RoomID           uint           `json:"room_id" binding:"required"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty" binding:"required"`
}

type RoomJoinResponse struct {
	JoinRoomResult JoinRoomResult `json:"join_room_result"`
}

// RoomIDRequest は wait / start / result / leave で共通のリクエスト
type RoomIDRequest struct {
	RoomID uint `json:"room_id" binding:"required"`
}

// RoomUser は待機画面に表示する参加者情報
type RoomUser struct {
	UserID           uint           `json:"user_id"`
	Name             string         `json:"name"`
	LeaderCardID     int            `json:"leader_card_id"`
	SelectDifficulty LiveDifficulty `json:"select_difficulty"`
	IsMe             bool           `json:"is_me"`
	IsHost           bool           `json:"is_host"`
}

type RoomWaitResponse struct {
	Status       RoomStatus `json:"status"`
	RoomUserList []RoomUser `json:"room_user_list"`
}

type RoomEndRequest struct {
	RoomID         uint  `json:"room_id" binding:"required"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}

// ResultUser はリザルト画面の1人分
type ResultUser struct {
	UserID         uint  `json:"user_id"`
	JudgeCountList []int `json:"judge_count_list"`
	Score          int   `json:"score"`
}

type RoomResultResponse struct {
	ResultUserList []ResultUser `json:"result_user_list"`
}
