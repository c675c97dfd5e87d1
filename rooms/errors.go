package rooms

import "errors"

var (
	// ErrNotFound 指定したルームまたはメンバーが存在しない
	ErrNotFound = errors.New("room not found")
	// ErrForbidden 権限がない（ホスト以外がライブを開始しようとした等）
	ErrForbidden = errors.New("operation not permitted")
	// ErrInvalidArgument 入力値が不正
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConsistency ストアの一意性などの不変条件が崩れている。リトライしない
	ErrConsistency = errors.New("room store consistency fault")
)
