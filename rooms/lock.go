package rooms

import "sync"

// roomLocks はルームIDごとの排他ロック。
// 別のルームに対する操作は互いにブロックしない。使われなくなったエントリは削除する
type roomLocks struct {
	mu    sync.Mutex
	locks map[uint]*roomLock
}

type roomLock struct {
	mu      sync.Mutex
	waiters int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[uint]*roomLock)}
}

// lock は roomID のロックを取得し、解放関数を返す
func (l *roomLocks) lock(roomID uint) func() {
	l.mu.Lock()
	rl, ok := l.locks[roomID]
	if !ok {
		rl = &roomLock{}
		l.locks[roomID] = rl
	}
	rl.waiters++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.waiters--
		if rl.waiters == 0 {
			delete(l.locks, roomID)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
